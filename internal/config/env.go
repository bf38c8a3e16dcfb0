package config

import "os"

// Environment variables that override file values.
const (
	EnvAccount         = "CDK_DEFAULT_ACCOUNT"
	EnvPrimaryRegion   = "MREKS_PRIMARY_REGION"
	EnvSecondaryRegion = "MREKS_SECONDARY_REGION"
	EnvArtifactsBucket = "MREKS_ARTIFACTS_BUCKET"
)

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides configuration values from the environment.
// A nil lookup reads the process environment.
func (c *Config) ApplyEnv(lookup LookupFunc) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	overrides := []struct {
		key    string
		target *string
	}{
		{EnvAccount, &c.AccountID},
		{EnvPrimaryRegion, &c.Regions.Primary},
		{EnvSecondaryRegion, &c.Regions.Secondary},
		{EnvArtifactsBucket, &c.Artifacts.Bucket},
	}
	for _, o := range overrides {
		if v, ok := lookup(o.key); ok && v != "" {
			*o.target = v
		}
	}
}
