package handlers

import (
	"context"
	"fmt"
	"strings"
)

// Plan prints the declaration graph level by level. Nodes on one level are
// declared concurrently.
func Plan(_ context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	p, err := newComposer(cfg, logger).Plan()
	if err != nil {
		return err
	}
	levels, err := p.Order()
	if err != nil {
		return err
	}

	printTitle(fmt.Sprintf("Plan for %s (%d nodes)", cfg.Project, p.Len()))
	for i, level := range levels {
		printField(fmt.Sprintf("level %d", i), strings.Join(level, ", "))
		for _, id := range level {
			n, _ := p.Node(id)
			if len(n.DependsOn) > 0 {
				fmt.Fprintf(stdout, "    %s ← %s\n", id, strings.Join(n.DependsOn, ", "))
			}
		}
	}
	return nil
}
