// Package registry loads the global server registry (global.json), which maps
// human-readable server names to MCSManager instance ids and startup command
// templates. Entries are returned in document order.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/arclight-deploy/internal/domain/deploy"
	"github.com/oshokin/arclight-deploy/internal/jsonobject"
)

// DefaultFilename is the registry file looked up in the working directory.
const DefaultFilename = "global.json"

var errMissingFields = errors.New("missing id or startup_command")

// Entry is a single registered server.
type Entry struct {
	// Name is the display name used as the registry key.
	Name string `json:"-"`
	// ID is the MCSManager instance identifier.
	ID string `json:"id"`
	// StartupCommand is the command template containing the placeholder jar name.
	StartupCommand string `json:"startup_command"`
	// DuplicateOf names the earlier entry that already claimed ID, if any.
	DuplicateOf string `json:"-"`

	decodeErr error
}

// Validate reports why the entry cannot be deployed. Every returned error wraps
// deploy.ErrInstanceSkipped.
func (e *Entry) Validate() error {
	switch {
	case e.decodeErr != nil:
		return fmt.Errorf("%w: %s: %w", deploy.ErrInstanceSkipped, e.Name, e.decodeErr)
	case e.ID == "" || e.StartupCommand == "":
		return fmt.Errorf("%w: %s: %w", deploy.ErrInstanceSkipped, e.Name, errMissingFields)
	case e.DuplicateOf != "":
		return fmt.Errorf("%w: %s: instance %s is already handled by %q",
			deploy.ErrInstanceSkipped, e.Name, e.ID, e.DuplicateOf)
	}

	return nil
}

// Registry is the ordered list of registered servers.
type Registry struct {
	entries []*Entry
}

// Load reads and parses the registry file at path.
func Load(path string) (*Registry, error) {
	if path == "" {
		path = DefaultFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s not found", deploy.ErrRegistryMalformed, path)
		}

		return nil, fmt.Errorf("%w: read %s: %w", deploy.ErrRegistryMalformed, path, err)
	}

	reg, err := Parse(contents)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return reg, nil
}

// Parse decodes a registry document. Entries that are not objects or carry
// fields of the wrong type are kept and reported by Entry.Validate. When two
// complete entries share an id, the first one wins and the later one is
// marked as a duplicate.
func Parse(data []byte) (*Registry, error) {
	obj, err := jsonobject.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", deploy.ErrRegistryMalformed, err)
	}

	var (
		reg    = &Registry{entries: make([]*Entry, 0, obj.Len())}
		seenBy = make(map[string]string, obj.Len())
	)

	for _, name := range obj.Keys() {
		raw, _ := obj.Raw(name)

		entry := &Entry{Name: name}
		if err = json.Unmarshal(raw, entry); err != nil {
			entry.decodeErr = fmt.Errorf("decode entry: %w", err)
		}

		if entry.decodeErr == nil && entry.ID != "" && entry.StartupCommand != "" {
			if first, seen := seenBy[entry.ID]; seen {
				entry.DuplicateOf = first
			} else {
				seenBy[entry.ID] = name
			}
		}

		reg.entries = append(reg.entries, entry)
	}

	return reg, nil
}

// Entries returns the registered servers in document order.
func (r *Registry) Entries() []*Entry {
	return r.entries
}

// Len returns the number of registered servers.
func (r *Registry) Len() int {
	return len(r.entries)
}
