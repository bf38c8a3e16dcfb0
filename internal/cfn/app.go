package cfn

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// ErrConstruct wraps failures raised while declaring or synthesizing constructs.
var ErrConstruct = errors.New("construct error")

var kernel sync.Mutex

// Do runs fn with exclusive use of the construct runtime.
func Do(fn func() error) (err error) {
	kernel.Lock()
	defer kernel.Unlock()
	defer func() {
		if r := recover(); r != nil {
			err = AsError(r)
		}
	}()
	return fn()
}

// AsError converts a value recovered from a construct panic into an error.
func AsError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: %w", ErrConstruct, err)
	}
	return fmt.Errorf("%w: %v", ErrConstruct, r)
}

// Env pins a stack to an account and region. Zones lists the region's
// availability zones in the order subnets are spread over them.
type Env struct {
	Account string
	Region  string
	Zones   []string
}

// zonesContextKey is the context key under which the availability zone
// lookup of an environment is cached.
func (e Env) zonesContextKey() string {
	return fmt.Sprintf("availability-zones:account=%s:region=%s", e.Account, e.Region)
}

// App is a construct app. Its methods must be called inside [Do].
type App struct {
	envs []Env
	app  awscdk.App
}

// NewApp returns an app for stacks in envs. The construct tree is created on
// first use.
func NewApp(envs ...Env) *App {
	return &App{envs: envs}
}

func (a *App) root() awscdk.App {
	if a.app != nil {
		return a.app
	}

	// Zones are served from context so synthesis never performs lookups.
	ctx := map[string]any{}
	for _, env := range a.envs {
		if env.Account != "" && len(env.Zones) > 0 {
			ctx[env.zonesContextKey()] = env.Zones
		}
	}
	a.app = awscdk.NewApp(&awscdk.AppProps{
		AnalyticsReporting: jsii.Bool(false),
		Context:            &ctx,
	})
	return a.app
}

// NewStack declares an empty stack. Stacks synthesize without bootstrap
// parameters or rules, so their templates deploy with plain CloudFormation.
func (a *App) NewStack(name, description string, env Env) awscdk.Stack {
	return awscdk.NewStack(a.root(), jsii.String(name), &awscdk.StackProps{
		StackName:   jsii.String(name),
		Description: optional(description),
		Env: &awscdk.Environment{
			Account: optional(env.Account),
			Region:  optional(env.Region),
		},
		Synthesizer:        awscdk.NewBootstraplessSynthesizer(&awscdk.BootstraplessSynthesizerProps{}),
		AnalyticsReporting: jsii.Bool(false),
	})
}

// Template synthesizes the app and returns the template of stack.
func (a *App) Template(stack awscdk.Stack) (*Template, error) {
	assembly := a.root().Synth(&awscdk.StageSynthesisOptions{Force: jsii.Bool(true)})
	artifact := assembly.GetStackArtifact(stack.ArtifactId())

	data, err := json.Marshal(artifact.Template())
	if err != nil {
		return nil, fmt.Errorf("failed to read template of %s: %w", *stack.StackName(), err)
	}
	return Parse(data)
}

// LogicalID returns the logical ID c is synthesized under. For higher-level
// constructs this is the ID of their default child resource.
func LogicalID(stack awscdk.Stack, c constructs.IConstruct) string {
	element, ok := c.(awscdk.CfnElement)
	if !ok {
		element, ok = c.Node().DefaultChild().(awscdk.CfnElement)
	}
	if !ok {
		return ""
	}
	return *stack.GetLogicalId(element)
}

// Strings dereferences a list returned by the construct runtime.
func Strings(list *[]*string) []string {
	if list == nil {
		return nil
	}
	out := make([]string, 0, len(*list))
	for _, s := range *list {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return jsii.String(s)
}
