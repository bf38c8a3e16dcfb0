package cluster

import (
	"fmt"
	"math/bits"
	"net"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/jsii-runtime-go"

	"github.com/imamik/mreks/internal/provisioning"
)

// Subnet role tags read by the load balancer controller.
const (
	tagPublicELB   = "kubernetes.io/role/elb"
	tagInternalELB = "kubernetes.io/role/internal-elb"
)

const vpcID = "Vpc"

type networkPhase struct{}

func (p *networkPhase) Name() string { return "network" }

// Provision declares a VPC with one public and one private subnet per
// availability zone. Private subnets egress through the configured number
// of NAT gateways, spread round robin.
func (p *networkPhase) Provision(ctx *provisioning.Context) error {
	network := ctx.Config.Network

	hostBits, err := subnetHostBits(network.CIDR, 2*network.MaxAZs)
	if err != nil {
		return err
	}
	mask := jsii.Number(32 - hostBits)

	var vpc awsec2.Vpc
	if err := ctx.Declare(p.Name(), "AWS::EC2::VPC", vpcID, func() {
		vpc = awsec2.NewVpc(ctx.Stack, jsii.String(vpcID), &awsec2.VpcProps{
			IpAddresses:        awsec2.IpAddresses_Cidr(jsii.String(network.CIDR)),
			MaxAzs:             jsii.Number(network.MaxAZs),
			NatGateways:        jsii.Number(network.NATGateways),
			EnableDnsHostnames: jsii.Bool(true),
			EnableDnsSupport:   jsii.Bool(true),
			SubnetConfiguration: &[]*awsec2.SubnetConfiguration{
				{
					Name:                jsii.String("Public"),
					SubnetType:          awsec2.SubnetType_PUBLIC,
					CidrMask:            mask,
					MapPublicIpOnLaunch: jsii.Bool(true),
				},
				{
					Name:       jsii.String("Private"),
					SubnetType: awsec2.SubnetType_PRIVATE_WITH_EGRESS,
					CidrMask:   mask,
				},
			},
		})
	}); err != nil {
		return err
	}

	for _, s := range *vpc.PublicSubnets() {
		awscdk.Tags_Of(s).Add(jsii.String(tagPublicELB), jsii.String("1"), nil)
	}
	for _, s := range *vpc.PrivateSubnets() {
		awscdk.Tags_Of(s).Add(jsii.String(tagInternalELB), jsii.String("1"), nil)
	}

	ctx.State.VPC = vpc
	return nil
}

// subnetHostBits returns the host bits of each of count equal subnets
// carved from cidr.
func subnetHostBits(cidr string, count int) (int, error) {
	_, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return 0, fmt.Errorf("invalid VPC CIDR %q: %w", cidr, err)
	}
	ones, size := ipNet.Mask.Size()
	extra := bits.Len(uint(count - 1))
	hostBits := size - ones - extra
	if hostBits < 4 {
		return 0, fmt.Errorf("VPC CIDR %s is too small for %d subnets", cidr, count)
	}
	return hostBits, nil
}

func subnetIDs(subnets *[]awsec2.ISubnet) *[]*string {
	ids := make([]*string, 0, len(*subnets))
	for _, s := range *subnets {
		ids = append(ids, s.SubnetId())
	}
	return &ids
}
