package deployer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/arclight-deploy/internal/artifact"
	"github.com/oshokin/arclight-deploy/internal/domain/deploy"
	"github.com/oshokin/arclight-deploy/internal/logger"
	"github.com/oshokin/arclight-deploy/internal/manager"
	"github.com/oshokin/arclight-deploy/internal/registry"
	"github.com/oshokin/arclight-deploy/internal/repository/instance"
)

// deployInstance brings one registered server up to date. The returned tally
// is only merged into the run summary when the whole instance succeeded.
func (d *deployer) deployInstance(ctx context.Context, entry *registry.Entry) (*deploy.Summary, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	logger.Info(ctx, "Processing server")

	target, err := d.layout.Instance(entry.ID)
	if err != nil {
		return nil, err
	}

	tally := new(deploy.Summary)

	if err = d.removeStaleArtifacts(ctx, target, tally); err != nil {
		return nil, err
	}

	if err = d.syncArtifact(ctx, target, tally); err != nil {
		return nil, err
	}

	command := deploy.RewriteStartCommand(entry.StartupCommand, d.cfg.Placeholder, d.artifact.Name)

	if err = d.updateStartCommand(ctx, instance.NewFileRepository(target.ConfigPath), command, tally); err != nil {
		return nil, err
	}

	return tally, nil
}

// removeStaleArtifacts deletes older artifact versions from the instance folder.
// A file carrying the selected artifact's name is kept for the digest check.
func (d *deployer) removeStaleArtifacts(ctx context.Context, target *manager.Instance, tally *deploy.Summary) error {
	stale, err := artifact.Stale(target.DataDir, d.cfg.ArtifactPattern, d.artifact.Name)
	if err != nil {
		return fmt.Errorf("scan instance folder: %w", err)
	}

	for _, path := range stale {
		if !d.dryRun {
			if err = os.Remove(path); err != nil {
				return fmt.Errorf("remove old jar: %w", err)
			}
		}

		logger.InfoKV(ctx, "Removed old jar", "file", filepath.Base(path))

		tally.StaleRemoved++
	}

	return nil
}

// syncArtifact copies the selected artifact unless an identical file is present.
func (d *deployer) syncArtifact(ctx context.Context, target *manager.Instance, tally *deploy.Summary) error {
	targetPath := filepath.Join(target.DataDir, d.artifact.Name)

	needsCopy, err := artifact.NeedsCopy(d.artifact, targetPath)
	if err != nil {
		return fmt.Errorf("compare jar: %w", err)
	}

	if !needsCopy {
		logger.Info(ctx, "Jar already up-to-date, skipping copy")

		tally.CopiesSkipped++

		return nil
	}

	if !d.dryRun {
		if _, err = artifact.Install(d.artifact, target.DataDir); err != nil {
			return fmt.Errorf("copy jar: %w", err)
		}
	}

	logger.InfoKV(ctx, "Copied jar to instance folder", "artifact", d.artifact.Name)

	tally.ArtifactsCopied++

	return nil
}

// updateStartCommand persists command into the instance config when it differs.
func (d *deployer) updateStartCommand(
	ctx context.Context,
	repo instance.Repository,
	command string,
	tally *deploy.Summary,
) error {
	record, err := repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load instance config: %w", err)
	}

	if record.StartCommand() == command {
		logger.Info(ctx, "startCommand already up-to-date, skipping save")

		return nil
	}

	if err = record.SetStartCommand(command); err != nil {
		return fmt.Errorf("set startCommand: %w", err)
	}

	if !d.dryRun {
		if err = repo.Save(ctx, record); err != nil {
			return fmt.Errorf("save instance config: %w", err)
		}
	}

	logger.InfoKV(ctx, "Updated startCommand in config", "start_command", command)

	tally.ConfigsUpdated++

	return nil
}
