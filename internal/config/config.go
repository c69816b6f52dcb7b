package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/arclight-deploy/internal/artifact"
	"github.com/oshokin/arclight-deploy/internal/logger"
	"github.com/oshokin/arclight-deploy/internal/registry"
)

// Config holds the paths and names used by a deployment run.
type Config struct {
	// EnvFile is the dotenv file holding ManagerPathKey.
	EnvFile string `yaml:"env_file"`
	// RegistryFile is the global server registry.
	RegistryFile string `yaml:"registry_file"`
	// ArtifactDir is the build output folder scanned for jars.
	ArtifactDir string `yaml:"artifact_dir"`
	// ArtifactPattern is the glob matching artifact file names.
	ArtifactPattern string `yaml:"artifact_pattern"`
	// Placeholder is the jar name used in startup command templates.
	Placeholder string `yaml:"placeholder"`
	// ManagerPathKey is the .env key naming the MCSManager daemon directory.
	ManagerPathKey string `yaml:"manager_path_key"`
	// LogLevel is the console log level.
	LogLevel string `yaml:"log_level"`
	// LogFile enables a rotating JSON log file when set.
	LogFile string `yaml:"log_file"`
}

const (
	// AppName names the XDG config subdirectory.
	AppName = "arclight-deploy"

	// DefaultConfigFilename is the default filename for deployer settings.
	DefaultConfigFilename = "arclight-deploy.yaml"

	// DefaultEnvFilename is the default dotenv file.
	DefaultEnvFilename = ".env"

	// DefaultPlaceholder is the jar name written in registry startup commands.
	DefaultPlaceholder = "arclight.jar"

	// DefaultManagerPathKey is the .env key pointing at the MCSManager daemon.
	DefaultManagerPathKey = "MCSMANAGER_DEMON_PATH"

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errInvalidLogLevel is returned for an unknown log level name.
	errInvalidLogLevel = errors.New("invalid log level")
)

// Default returns settings with every field set to its default.
func Default() *Config {
	cfg := new(Config)

	// Defaults cannot fail validation.
	_ = Validate(cfg)

	return cfg
}

// Load reads settings from path. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks the pattern and log level.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	setDefault(&cfg.EnvFile, DefaultEnvFilename)
	setDefault(&cfg.RegistryFile, registry.DefaultFilename)
	setDefault(&cfg.ArtifactDir, artifact.DefaultDir)
	setDefault(&cfg.ArtifactPattern, artifact.DefaultPattern)
	setDefault(&cfg.Placeholder, DefaultPlaceholder)
	setDefault(&cfg.ManagerPathKey, DefaultManagerPathKey)
	setDefault(&cfg.LogLevel, DefaultLogLevel)

	if err := artifact.ValidatePattern(cfg.ArtifactPattern); err != nil {
		return err
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %s", errInvalidLogLevel, cfg.LogLevel)
	}

	return nil
}

// ResolvePaths makes relative file paths absolute against base.
func (c *Config) ResolvePaths(base string) {
	for _, path := range []*string{&c.EnvFile, &c.RegistryFile, &c.ArtifactDir, &c.LogFile} {
		*path = resolve(base, *path)
	}
}

// resolve joins path to base unless path is empty or already absolute.
func resolve(base, path string) string {
	if path == "" || base == "" || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(base, path)
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
