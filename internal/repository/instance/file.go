package instance

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/arclight-deploy/internal/jsonobject"
)

const (
	// startCommandKey is the field MCSManager launches the instance with.
	startCommandKey = "startCommand"

	// defaultFilePermissions is used when the config file is created from scratch.
	defaultFilePermissions = 0o644
)

// Repository defines persistence operations for an instance config.
type Repository interface {
	Load(ctx context.Context) (*Record, error)
	Save(ctx context.Context, record *Record) error
}

// Record is a decoded instance config.
type Record struct {
	fields *jsonobject.Object
}

// FileRepository persists an instance config to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the <id>.json file.
	path string
}

var (
	// ErrNotFound is returned when the config file does not exist.
	ErrNotFound = errors.New("instance config not found")

	errRecordIsNotSet = errors.New("record is not set")
)

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the config from disk.
func (r *FileRepository) Load(_ context.Context) (*Record, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read instance config: %w", err)
	}

	fields, err := jsonobject.Parse(contents)
	if err != nil {
		return nil, fmt.Errorf("decode instance config: %w", err)
	}

	return &Record{fields: fields}, nil
}

// Save writes the config back with two-space indentation, keeping the
// existing file mode.
func (r *FileRepository) Save(_ context.Context, record *Record) error {
	if record == nil || record.fields == nil {
		return errRecordIsNotSet
	}

	data, err := record.fields.MarshalIndent()
	if err != nil {
		return fmt.Errorf("encode instance config: %w", err)
	}

	mode := os.FileMode(defaultFilePermissions)
	if info, statErr := os.Stat(r.path); statErr == nil {
		mode = info.Mode().Perm()
	}

	if err = os.WriteFile(r.path, data, mode); err != nil {
		return fmt.Errorf("write instance config: %w", err)
	}

	return nil
}

// StartCommand returns the stored start command, or "" when it is missing or not a string.
func (r *Record) StartCommand() string {
	command, _ := r.fields.String(startCommandKey)

	return command
}

// SetStartCommand replaces the stored start command.
func (r *Record) SetStartCommand(command string) error {
	return r.fields.Set(startCommandKey, command)
}
