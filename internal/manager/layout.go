// Package manager describes the MCSManager daemon directory layout that the
// deployer writes into. The daemon owns these folders; the deployer only
// resolves and validates paths inside them.
package manager

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/arclight-deploy/internal/domain/deploy"
)

const (
	// ConfigFolder holds one <id>.json file per instance.
	ConfigFolder = "InstanceConfig"
	// DataFolder holds one working directory per instance.
	DataFolder = "InstanceData"

	configExtension = ".json"
)

var (
	errInvalidInstanceID = errors.New("invalid instance id")
	errNotDirectory      = errors.New("not a directory")
)

// Layout is a validated daemon root.
type Layout struct {
	// Root is the daemon working directory.
	Root string
	// ConfigDir is Root/InstanceConfig.
	ConfigDir string
	// DataDir is Root/InstanceData.
	DataDir string
}

// Instance holds the resolved paths of one managed instance.
type Instance struct {
	// ID is the instance identifier.
	ID string
	// ConfigPath is the instance config file.
	ConfigPath string
	// DataDir is the instance working directory.
	DataDir string
}

// Resolve validates that root and both instance folders exist.
func Resolve(root string) (*Layout, error) {
	if err := requireDir(root); err != nil {
		return nil, fmt.Errorf("%w: manager path '%s' does not exist: %w", deploy.ErrPathInvalid, root, err)
	}

	layout := &Layout{
		Root:      root,
		ConfigDir: filepath.Join(root, ConfigFolder),
		DataDir:   filepath.Join(root, DataFolder),
	}

	if err := requireDir(layout.ConfigDir); err != nil {
		return nil, fmt.Errorf("%w: %s folder not found at '%s': %w",
			deploy.ErrPathInvalid, ConfigFolder, layout.ConfigDir, err)
	}

	if err := requireDir(layout.DataDir); err != nil {
		return nil, fmt.Errorf("%w: %s folder not found at '%s': %w",
			deploy.ErrPathInvalid, DataFolder, layout.DataDir, err)
	}

	return layout, nil
}

// Instance resolves the config file and data folder for id. The returned
// error wraps deploy.ErrInstanceSkipped when either path is missing.
func (l *Layout) Instance(id string) (*Instance, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return nil, fmt.Errorf("%w: %w %q", deploy.ErrInstanceSkipped, errInvalidInstanceID, id)
	}

	instance := &Instance{
		ID:         id,
		ConfigPath: filepath.Join(l.ConfigDir, id+configExtension),
		DataDir:    filepath.Join(l.DataDir, id),
	}

	if info, err := os.Stat(instance.ConfigPath); err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: instance file not found (%s%s)", deploy.ErrInstanceSkipped, id, configExtension)
	}

	if err := requireDir(instance.DataDir); err != nil {
		return nil, fmt.Errorf("%w: instance data folder not found (%s)", deploy.ErrInstanceSkipped, id)
	}

	return instance, nil
}

func requireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return errNotDirectory
	}

	return nil
}
