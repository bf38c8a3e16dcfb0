package aws

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_StaticCredentials(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cfg, err := LoadConfig(ctx, "us-east-2", Options{AccessKeyID: "AKIDEXAMPLE", SecretAccessKey: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "us-east-2", cfg.Region)

	creds, err := cfg.Credentials.Retrieve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AKIDEXAMPLE", creds.AccessKeyID)
	assert.Equal(t, "secret", creds.SecretAccessKey)
}
