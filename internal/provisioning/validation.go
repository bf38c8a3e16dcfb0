package provisioning

import (
	"fmt"
	"net"
	"strings"

	"github.com/imamik/mreks/internal/config"
)

// ValidationError represents a configuration validation error or warning.
type ValidationError struct {
	Field    string // Configuration field that failed validation
	Message  string // Human-readable error message
	Severity string // "error" or "warning"
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", ve.Severity, ve.Field, ve.Message)
}

// IsError returns true if this is an error (not a warning).
func (ve ValidationError) IsError() bool {
	return ve.Severity == "error"
}

// ValidationPhase checks that the configuration can be declared in the
// context's region before any resource is added.
type ValidationPhase struct{}

// NewValidationPhase creates a new validation phase.
func NewValidationPhase() *ValidationPhase {
	return &ValidationPhase{}
}

// Name implements the Phase interface.
func (vp *ValidationPhase) Name() string {
	return "validation"
}

// Provision implements the Phase interface.
func (vp *ValidationPhase) Provision(ctx *Context) error {
	var errs []string
	for _, ve := range validate(ctx) {
		if ve.IsError() {
			errs = append(errs, ve.Error())
			continue
		}
		LogValidationWarning(ctx.Observer, vp.Name(), ve.Message)
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func validate(ctx *Context) []ValidationError {
	var errs []ValidationError
	cfg := ctx.Config

	if err := cfg.Validate(); err != nil {
		errs = append(errs, ValidationError{Field: "Config", Message: err.Error(), Severity: "error"})
	}
	if err := cfg.RequireAccount(); err != nil {
		errs = append(errs, ValidationError{Field: "AccountID", Message: err.Error(), Severity: "error"})
	}

	if ctx.Region.Name != cfg.Regions.Primary && ctx.Region.Name != cfg.Regions.Secondary {
		errs = append(errs, ValidationError{
			Field:    "Region",
			Message:  fmt.Sprintf("region %s is neither the primary nor the secondary region", ctx.Region.Name),
			Severity: "error",
		})
	}
	if ctx.Region.IsPrimary() != (ctx.Region.Name == cfg.Regions.Primary) {
		errs = append(errs, ValidationError{
			Field:    "Region",
			Message:  fmt.Sprintf("region %s has role %s which does not match the configuration", ctx.Region.Name, ctx.Region.Role),
			Severity: "error",
		})
	}

	if _, ipNet, err := net.ParseCIDR(cfg.Network.CIDR); err == nil {
		if ones, _ := ipNet.Mask.Size(); ones > 16 {
			errs = append(errs, ValidationError{
				Field:    "Network.CIDR",
				Message:  fmt.Sprintf("CIDR prefix /%d leaves little room for pods, /16 is recommended", ones),
				Severity: "warning",
			})
		}
	}

	if cfg.Cluster.Workers.CapacityType == config.CapacitySpot && len(cfg.Cluster.Workers.InstanceTypes) < 2 {
		errs = append(errs, ValidationError{
			Field:    "Cluster.Workers.InstanceTypes",
			Message:  "spot capacity with a single instance type is prone to interruptions",
			Severity: "warning",
		})
	}

	return errs
}
