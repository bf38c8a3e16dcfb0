package handlers

import (
	"context"
	"fmt"

	"github.com/olekukonko/tablewriter"

	awsplatform "github.com/imamik/mreks/internal/platform/aws"
)

// Status prints the live state of the cluster in both regions.
func Status(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	regions, err := cfg.Topology()
	if err != nil {
		return err
	}

	awsCfg, err := loadAWSConfig(ctx, regions.Primary.Name)
	if err != nil {
		return err
	}
	inspector := newInspector(awsCfg)

	var statuses []awsplatform.ClusterStatus
	for _, region := range regions.All() {
		st, err := inspector.ClusterStatus(ctx, region.Name, cfg.Cluster.Name)
		if err != nil {
			return err
		}
		statuses = append(statuses, st)
	}

	table := tablewriter.NewWriter(stdout)
	table.SetHeader([]string{"Region", "Role", "Cluster", "State", "Version", "Endpoint"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	for i, st := range statuses {
		table.Append([]string{
			st.Region,
			regions.All()[i].Role.String(),
			st.Name,
			fmt.Sprintf("%s %s", mark(st.State == awsplatform.StateRunning), st.State),
			st.Version,
			st.Endpoint,
		})
	}
	table.Render()
	return nil
}
