package cfn

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const synthesized = `{
  "Description": "demo",
  "Resources": {
    "B": {"Type": "AWS::EC2::Subnet", "Properties": {"CidrBlock": "10.0.1.0/24"}},
    "A": {"Type": "AWS::EC2::Subnet", "Properties": {"CidrBlock": "10.0.0.0/24"}},
    "V": {"Type": "AWS::EC2::VPC", "Properties": {"CidrBlock": "10.0.0.0/16"}, "DependsOn": ["A"]}
  },
  "Outputs": {
    "VpcId": {"Value": {"Ref": "V"}, "Export": {"Name": "demo-vpc"}}
  },
  "Conditions": {"Always": {"Fn::Equals": ["a", "a"]}}
}`

func TestParse(t *testing.T) {
	t.Parallel()
	tmpl, err := Parse([]byte(synthesized))
	require.NoError(t, err)

	assert.Equal(t, "demo", tmpl.Description)
	assert.Equal(t, map[string]int{"AWS::EC2::Subnet": 2, "AWS::EC2::VPC": 1}, tmpl.Types())
	assert.Equal(t, []string{"A", "B"}, tmpl.OfType("AWS::EC2::Subnet"))
	assert.Empty(t, tmpl.OfType("AWS::EKS::Cluster"))

	vpc, ok := tmpl.Resource("V")
	require.True(t, ok)
	assert.Equal(t, "10.0.0.0/16", vpc.Properties["CidrBlock"])

	out := tmpl.Outputs["VpcId"]
	require.NotNil(t, out.Export)
	assert.Equal(t, "demo-vpc", out.Export.Name)
	assert.Equal(t, map[string]any{"Ref": "V"}, out.Value)
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()
	_, err := Parse([]byte("Resources: ["))
	require.Error(t, err)

	_, err = Parse([]byte(`{"Description": "empty"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no resources")
}

func TestTemplate_RenderKeepsUnmodeledSections(t *testing.T) {
	t.Parallel()
	tmpl, err := Parse([]byte(synthesized))
	require.NoError(t, err)

	out, err := tmpl.Render()
	require.NoError(t, err)
	assert.Contains(t, string(out), "Conditions:")
	assert.Contains(t, string(out), "Fn::Equals")
	assert.Contains(t, string(out), "Type: AWS::EC2::VPC")

	again, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, tmpl.Types(), again.Types())
}

var testEnv = Env{Account: "123456789012", Region: "us-west-2", Zones: []string{"us-west-2b", "us-west-2c", "us-west-2d"}}

func TestApp_Template(t *testing.T) {
	var tmpl *Template
	require.NoError(t, Do(func() error {
		app := NewApp(testEnv)
		stack := app.NewStack("DemoStack", "demo stack", testEnv)
		queue := awscdk.NewCfnResource(stack, jsii.String("Queue"), &awscdk.CfnResourceProps{
			Type: jsii.String("AWS::SQS::Queue"),
		})
		awscdk.NewCfnOutput(stack, jsii.String("QueueArn"), &awscdk.CfnOutputProps{
			Value:      queue.GetAtt(jsii.String("Arn"), "").ToString(),
			ExportName: jsii.String("demo-queue-arn"),
		})
		assert.Equal(t, "Queue", LogicalID(stack, queue))

		var err error
		tmpl, err = app.Template(stack)
		return err
	}))

	assert.Equal(t, "demo stack", tmpl.Description)
	assert.Equal(t, map[string]int{"AWS::SQS::Queue": 1}, tmpl.Types(), "no metadata or bootstrap resources")
	require.NotNil(t, tmpl.Outputs["QueueArn"].Export)
	assert.Equal(t, "demo-queue-arn", tmpl.Outputs["QueueArn"].Export.Name)

	out, err := tmpl.Render()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "BootstrapVersion")
}

func TestApp_ZonesFromEnv(t *testing.T) {
	require.NoError(t, Do(func() error {
		app := NewApp(testEnv)
		stack := app.NewStack("NetworkStack", "network", testEnv)
		vpc := awsec2.NewVpc(stack, jsii.String("Vpc"), &awsec2.VpcProps{
			MaxAzs:      jsii.Number(3),
			NatGateways: jsii.Number(1),
		})

		assert.Equal(t, []string{"us-west-2b", "us-west-2c", "us-west-2d"}, Strings(vpc.AvailabilityZones()))
		assert.NotEmpty(t, LogicalID(stack, vpc))

		template := assertions.Template_FromStack(stack, nil)
		template.HasResourceProperties(jsii.String("AWS::EC2::Subnet"), map[string]any{
			"AvailabilityZone": "us-west-2d",
		})
		return nil
	}))
}

func TestDo_ReturnsConstructErrors(t *testing.T) {
	err := Do(func() error {
		stack := NewApp().NewStack("DupStack", "", testEnv)
		awscdk.NewCfnResource(stack, jsii.String("Queue"), &awscdk.CfnResourceProps{Type: jsii.String("AWS::SQS::Queue")})
		awscdk.NewCfnResource(stack, jsii.String("Queue"), &awscdk.CfnResourceProps{Type: jsii.String("AWS::SQS::Queue")})
		return nil
	})
	require.ErrorIs(t, err, ErrConstruct)
	assert.Contains(t, err.Error(), "Queue")

	// The runtime stays usable after a recovered failure.
	require.NoError(t, Do(func() error {
		NewApp().NewStack("NextStack", "", testEnv)
		return nil
	}))
}

func TestStrings(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Strings(nil))
	assert.Equal(t, []string{"a", "b"}, Strings(&[]*string{jsii.String("a"), nil, jsii.String("b")}))
}

func TestAsError(t *testing.T) {
	t.Parallel()
	assert.ErrorIs(t, AsError("boom"), ErrConstruct)
	assert.EqualError(t, AsError("boom"), "construct error: boom")
}
