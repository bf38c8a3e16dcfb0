package provisioning

import (
	"context"
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"

	"github.com/imamik/mreks/internal/cfn"
	"github.com/imamik/mreks/internal/config"
	"github.com/imamik/mreks/internal/topology"
)

// Context wraps all dependencies and state needed for a provisioning phase.
// Phases run inside [cfn.Do], so they may declare constructs into Stack.
type Context struct {
	context.Context
	Config   *config.Config
	Region   topology.Region
	Stack    awscdk.Stack
	State    *State
	Observer Observer

	declared int
}

// NewContext creates a provisioning context declaring into stack.
func NewContext(ctx context.Context, cfg *config.Config, region topology.Region, stack awscdk.Stack) *Context {
	return &Context{
		Context:  ctx,
		Config:   cfg,
		Region:   region,
		Stack:    stack,
		State:    NewState(),
		Observer: NewConsoleObserver().WithFields(map[string]string{"region": region.Name}),
	}
}

// Declare runs declare, which adds the construct id to the stack, and
// reports the outcome to the observer. Construct errors raised by declare
// are returned instead of unwinding the phase.
func (c *Context) Declare(phase, resourceType, id string, declare func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = cfn.AsError(r)
			LogResourceFailed(c.Observer, phase, resourceType, id, err)
			err = fmt.Errorf("failed to declare %s %s: %w", resourceType, id, err)
		}
	}()

	declare()
	c.declared++
	LogResourceDeclared(c.Observer, phase, resourceType, id)
	return nil
}

// Declared returns how many constructs were declared successfully.
func (c *Context) Declared() int {
	return c.declared
}

// Output adds a stack output. A non-empty exportName exports it for
// cross-stack references.
func (c *Context) Output(name string, value *string, exportName string) {
	props := &awscdk.CfnOutputProps{Value: value}
	if exportName != "" {
		props.ExportName = jsii.String(exportName)
	}
	awscdk.NewCfnOutput(c.Stack, jsii.String(name), props)
}
