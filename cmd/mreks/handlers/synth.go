package handlers

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/imamik/mreks/internal/orchestration"
)

// DefaultOutputDir receives synthesized templates.
const DefaultOutputDir = "cdk.out"

// newComposer creates the deployment composer (for testing injection).
var newComposer = orchestration.NewComposer

// Synth declares every stack and writes the templates to outDir. With upload
// set, the written files are also published to the artifacts bucket.
func Synth(ctx context.Context, configPath, outDir string, upload bool) error {
	cfg, err := loadResolved(ctx, configPath)
	if err != nil {
		return err
	}
	if upload && !cfg.UploadEnabled() {
		return errors.New("upload requested but no artifacts bucket is configured")
	}

	assembly, err := newComposer(cfg, logger).Compose(ctx)
	if err != nil {
		return fmt.Errorf("synthesis failed: %w", err)
	}

	files, err := assembly.Write(outDir, cfg.Project)
	if err != nil {
		return err
	}

	printTitle(fmt.Sprintf("Synthesized %s", cfg.Project))
	printField("account", cfg.AccountID)
	printField("regions", fmt.Sprintf("%s → %s", assembly.Regions.Primary.Name, assembly.Regions.Secondary.Name))
	for _, s := range assembly.Manifest(cfg.Project).Stacks {
		printField("stack", fmt.Sprintf("%s (%s, %d resources)", s.Name, s.Region, s.Resources))
	}
	printField("output", fmt.Sprintf("%s (%d files)", outDir, len(files)))

	if !upload {
		return nil
	}
	return uploadArtifacts(ctx, cfg.Artifacts.Bucket, path.Join(cfg.Artifacts.Prefix, cfg.Project), cfg.Artifacts.Endpoint, cfg.Regions.Primary, outDir, files)
}

func uploadArtifacts(ctx context.Context, bucket, prefix, endpoint, region, dir string, files []string) error {
	awsCfg, err := loadAWSConfig(ctx, region)
	if err != nil {
		return err
	}
	uploader := newUploader(awsCfg, endpoint)

	if err := uploader.EnsureBucket(ctx, bucket); err != nil {
		return err
	}
	keys, err := uploader.Upload(ctx, bucket, prefix, dir, files)
	if err != nil {
		return fmt.Errorf("artifact upload failed: %w", err)
	}

	printField("uploaded", fmt.Sprintf("s3://%s/%s (%d objects)", bucket, prefix, len(keys)))
	return nil
}
