package handlers

import (
	"context"
	"errors"
	"slices"

	"github.com/olekukonko/tablewriter"

	awsplatform "github.com/imamik/mreks/internal/platform/aws"
)

// Preflight checks both regions can host the declared clusters.
func Preflight(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.Regions.Primary)
	if err != nil {
		return err
	}

	instanceTypes := slices.Clone(cfg.Cluster.Workers.InstanceTypes)
	if cfg.Cluster.DefaultNodeCount() > 0 && !slices.Contains(instanceTypes, cfg.Cluster.DefaultInstanceType) {
		instanceTypes = append(instanceTypes, cfg.Cluster.DefaultInstanceType)
	}

	findings, err := newInspector(awsCfg).PreflightRegions(ctx,
		[]string{cfg.Regions.Primary, cfg.Regions.Secondary}, instanceTypes, cfg.Network.MaxAZs)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(stdout)
	table.SetHeader([]string{"Region", "Check", "", "Detail"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	for _, f := range findings {
		table.Append([]string{f.Region, f.Check, mark(f.OK), f.Detail})
	}
	table.Render()

	if !awsplatform.Passed(findings) {
		return errors.New("preflight checks failed")
	}
	return nil
}
