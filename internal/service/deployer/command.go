package deployer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/arclight-deploy/internal/artifact"
	"github.com/oshokin/arclight-deploy/internal/config"
	"github.com/oshokin/arclight-deploy/internal/domain/deploy"
	"github.com/oshokin/arclight-deploy/internal/logger"
	"github.com/oshokin/arclight-deploy/internal/manager"
	"github.com/oshokin/arclight-deploy/internal/registry"
)

var (
	errInvalidLogLevel = errors.New("invalid log level")
	errInterrupted     = errors.New("deployment interrupted")
)

// Options are inputs accepted by the deployer entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// WorkDir is the base for relative paths in settings and .env; defaults to the current directory.
	WorkDir string
	// LogLevel overrides the level from settings when set.
	LogLevel string
	// DryRun reports intended changes without touching any file.
	DryRun bool
	// Output receives the final summary; defaults to stdout.
	Output io.Writer
}

// deployer holds everything resolved during setup for a single run.
// Callers use Run.
type deployer struct {
	cfg      *config.Config     // Settings with paths resolved against the work dir.
	layout   *manager.Layout    // Validated MCSManager daemon folders.
	artifact *artifact.Artifact // Selected jar with its digest.
	registry *registry.Registry // Servers to deploy, in document order.
	dryRun   bool
	out      io.Writer
}

// Run executes the deployment and returns the summary of what changed.
// Setup failures are returned before any instance is touched.
func Run(ctx context.Context, opts *Options) (*deploy.Summary, error) {
	if opts == nil {
		opts = new(Options)
	}

	var err error

	workDir := opts.WorkDir
	if workDir == "" {
		if workDir, err = os.Getwd(); err != nil {
			return nil, err
		}
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.Discover(workDir)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	cfg.ResolvePaths(workDir)

	ctx, closeLog, err := withLogger(ctx, cfg, opts.LogLevel)
	if err != nil {
		return nil, err
	}

	defer closeLog()

	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, config.AppName)
	if opts.DryRun {
		ctx = logger.WithKV(ctx, "dry_run", true)
	}

	d, err := newDeployer(ctx, cfg, workDir, opts)
	if err != nil {
		if deploy.IsSetupError(err) {
			logger.ErrorKV(ctx, "Deployment setup failed", "error", err)
		} else {
			logger.ErrorKV(ctx, "Unexpected error during setup", "error", err)
		}

		return nil, err
	}

	warnRunningServers(ctx)

	summary, err := d.Run(ctx)
	if err != nil {
		return summary, err
	}

	logger.Info(ctx, "Deployment completed")

	return summary, nil
}

// newDeployer performs the setup phase: .env, daemon layout, artifact and registry.
func newDeployer(ctx context.Context, cfg *config.Config, workDir string, opts *Options) (*deployer, error) {
	env, err := config.LoadEnvironment(cfg.EnvFile)
	if err != nil {
		return nil, err
	}

	root, err := env.Require(cfg.ManagerPathKey)
	if err != nil {
		return nil, err
	}

	if !filepath.IsAbs(root) {
		root = filepath.Join(workDir, root)
	}

	layout, err := manager.Resolve(root)
	if err != nil {
		return nil, err
	}

	selected, err := artifact.Locate(ctx, cfg.ArtifactDir, cfg.ArtifactPattern)
	if err != nil {
		return nil, err
	}

	if err = selected.ComputeDigest(); err != nil {
		return nil, fmt.Errorf("digest %s: %w", selected.Name, err)
	}

	logger.InfoKV(ctx, "Using arclight jar",
		"artifact", selected.Name, "digest", selected.Digest.String(), "size", selected.Size)

	reg, err := registry.Load(cfg.RegistryFile)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Loaded server registry", "servers", reg.Len())

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	return &deployer{
		cfg:      cfg,
		layout:   layout,
		artifact: selected,
		registry: reg,
		dryRun:   opts.DryRun,
		out:      out,
	}, nil
}

// Run walks the registry in order and prints the summary. An interrupt stops
// the walk between instances; the summary is still printed.
func (d *deployer) Run(ctx context.Context) (*deploy.Summary, error) {
	var (
		summary     = new(deploy.Summary)
		interrupted error
	)

	for _, entry := range d.registry.Entries() {
		if err := ctx.Err(); err != nil {
			interrupted = fmt.Errorf("%w: %w", errInterrupted, err)
			break
		}

		instanceCtx := logger.WithFields(ctx, "server", entry.Name, "instance", entry.ID)

		tally, err := d.deployInstance(instanceCtx, entry)
		if err != nil {
			summary.InstancesFailed++

			if errors.Is(err, deploy.ErrInstanceSkipped) {
				logger.WarnKV(instanceCtx, "Skipping server", "reason", err)
			} else {
				logger.ErrorKV(instanceCtx, "Error updating server", "error", err)
			}

			continue
		}

		summary.Merge(tally)
	}

	if err := summary.WriteReport(d.out); err != nil {
		return summary, fmt.Errorf("write summary: %w", err)
	}

	return summary, interrupted
}

// withLogger attaches a logger built from settings to ctx. The returned
// function flushes and closes the log file.
func withLogger(ctx context.Context, cfg *config.Config, override string) (context.Context, func(), error) {
	levelName := cfg.LogLevel
	if override != "" {
		levelName = override
	}

	lvl, ok := logger.ParseLogLevel(levelName)
	if !ok {
		return ctx, func() {}, fmt.Errorf("%w: %s", errInvalidLogLevel, levelName)
	}

	level := zap.NewAtomicLevelAt(lvl)

	if cfg.LogFile == "" {
		return logger.ToContext(ctx, logger.New(level)), func() {}, nil
	}

	file := logger.NewRotatingFile(cfg.LogFile)
	l := logger.NewWithFile(level, zapcore.AddSync(file))

	closeLog := func() {
		_ = l.Sync()
		_ = file.Close()
	}

	return logger.ToContext(ctx, l), closeLog, nil
}
