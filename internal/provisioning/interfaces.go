package provisioning

// Phase defines the interface for a provisioning phase.
type Phase interface {
	// Name returns the human-readable name of this phase.
	Name() string

	// Provision declares the constructs of this phase into ctx.Stack.
	Provision(ctx *Context) error
}

// PhaseFunc adapts a function to the Phase interface.
type PhaseFunc struct {
	PhaseName string
	Fn        func(*Context) error
}

// Name implements Phase.
func (p PhaseFunc) Name() string { return p.PhaseName }

// Provision implements Phase.
func (p PhaseFunc) Provision(ctx *Context) error { return p.Fn(ctx) }
