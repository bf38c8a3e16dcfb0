package provisioning

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/mreks/internal/cfn"
	"github.com/imamik/mreks/internal/config"
	"github.com/imamik/mreks/internal/topology"
)

func newTestContext(t *testing.T) (*Context, *MockObserver) {
	t.Helper()
	cfg := config.Default()
	cfg.AccountID = "123456789012"
	regions, err := cfg.Topology()
	require.NoError(t, err)

	ctx := NewContext(context.Background(), cfg, regions.Primary, nil)
	observer := NewMockObserver()
	ctx.Observer = observer
	return ctx, observer
}

func TestRunPhases_Success(t *testing.T) {
	t.Parallel()
	ctx, observer := newTestContext(t)
	var executed []string

	phases := []Phase{
		PhaseFunc{PhaseName: "network", Fn: func(*Context) error { executed = append(executed, "network"); return nil }},
		PhaseFunc{PhaseName: "identity", Fn: func(*Context) error { executed = append(executed, "identity"); return nil }},
		PhaseFunc{PhaseName: "cluster", Fn: func(*Context) error { executed = append(executed, "cluster"); return nil }},
	}

	require.NoError(t, RunPhases(ctx, phases))
	assert.Equal(t, []string{"network", "identity", "cluster"}, executed)
	assert.Len(t, observer.Events(EventPhaseStarted), 3)
	assert.Len(t, observer.Events(EventPhaseCompleted), 3)
	assert.Equal(t, "network (1/3)", observer.Events(EventPhaseStarted)[0].Phase)
}

func TestRunPhases_StopsOnFailure(t *testing.T) {
	t.Parallel()
	ctx, observer := newTestContext(t)
	boom := errors.New("boom")
	var executed []string

	phases := []Phase{
		PhaseFunc{PhaseName: "network", Fn: func(*Context) error { executed = append(executed, "network"); return nil }},
		PhaseFunc{PhaseName: "identity", Fn: func(*Context) error { return boom }},
		PhaseFunc{PhaseName: "cluster", Fn: func(*Context) error { executed = append(executed, "cluster"); return nil }},
	}

	err := RunPhases(ctx, phases)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "identity phase failed")
	assert.Equal(t, []string{"network"}, executed)
	assert.Len(t, observer.Events(EventPhaseFailed), 1)
}

func TestRunPhases_Cancelled(t *testing.T) {
	t.Parallel()
	ctx, _ := newTestContext(t)
	cancelled, cancel := context.WithCancel(ctx.Context)
	cancel()
	ctx.Context = cancelled

	err := RunPhases(ctx, []Phase{PhaseFunc{PhaseName: "network", Fn: func(*Context) error { return nil }}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestContext_Declare(t *testing.T) {
	ctx, observer := newTestContext(t)

	require.NoError(t, cfn.Do(func() error {
		env := cfn.Env{Account: ctx.Config.AccountID, Region: ctx.Region.Name}
		ctx.Stack = cfn.NewApp(env).NewStack("DeclareStack", "", env)

		queue := func() {
			awscdk.NewCfnResource(ctx.Stack, jsii.String("Queue"), &awscdk.CfnResourceProps{Type: jsii.String("AWS::SQS::Queue")})
		}
		require.NoError(t, ctx.Declare("network", "AWS::SQS::Queue", "Queue", queue))

		err := ctx.Declare("network", "AWS::SQS::Queue", "Queue", queue)
		require.ErrorIs(t, err, cfn.ErrConstruct)
		assert.Contains(t, err.Error(), "failed to declare AWS::SQS::Queue Queue")
		return nil
	}))

	assert.Equal(t, 1, ctx.Declared())
	assert.Len(t, observer.Events(EventResourceDeclared), 1)
	require.Len(t, observer.Events(EventResourceFailed), 1)
	assert.Equal(t, "Queue", observer.Events(EventResourceFailed)[0].Resource)
	assert.Equal(t, topology.RolePrimary, ctx.Region.Role)
}

func TestContext_DeclareWithoutConstructs(t *testing.T) {
	t.Parallel()
	ctx, observer := newTestContext(t)

	require.NoError(t, ctx.Declare("addons", "Helm::Release", "kube-system/metrics-server", func() {}))
	assert.Equal(t, 1, ctx.Declared())
	assert.Len(t, observer.Events(EventResourceDeclared), 1)
}
