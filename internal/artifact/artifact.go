package artifact

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/opencontainers/go-digest"

	"github.com/oshokin/arclight-deploy/internal/domain/deploy"
	"github.com/oshokin/arclight-deploy/internal/logger"
)

const (
	// DefaultDir is the build output folder scanned for artifacts.
	DefaultDir = "server-core"
	// DefaultPattern matches versioned Arclight jars.
	DefaultPattern = "arclight-*.jar"
)

var errInvalidPattern = errors.New("invalid artifact pattern")

// Artifact is the jar selected for deployment.
type Artifact struct {
	// Name is the file name, used as the target name in every instance.
	Name string
	// Path is the source location.
	Path string
	// ModTime is the source modification time, preserved on copies.
	ModTime time.Time
	// Mode is the source file mode, preserved on copies.
	Mode os.FileMode
	// Size is the file size in bytes.
	Size int64
	// Digest is the SHA-256 content digest. It is empty until computed.
	Digest digest.Digest
}

// ValidatePattern reports whether pattern is a well-formed glob.
func ValidatePattern(pattern string) error {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return fmt.Errorf("%w %q: %w", errInvalidPattern, pattern, err)
	}

	return nil
}

// Match returns the regular files in dir whose names match pattern, sorted by name.
func Match(dir, pattern string) ([]string, error) {
	if err := ValidatePattern(pattern); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	matches := make([]string, 0, len(entries))

	for _, entry := range entries {
		// The pattern was validated above.
		if ok, _ := filepath.Match(pattern, entry.Name()); !ok {
			continue
		}

		path := filepath.Join(dir, entry.Name())

		// Follow symlinks, skip folders and devices.
		info, statErr := os.Stat(path)
		if statErr != nil || !info.Mode().IsRegular() {
			continue
		}

		matches = append(matches, path)
	}

	return matches, nil
}

// Locate returns the most recently modified artifact in dir. Ties on
// modification time are broken by name so the choice is deterministic.
func Locate(ctx context.Context, dir, pattern string) (*Artifact, error) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s folder not found", deploy.ErrArtifactNotFound, dir)
	}

	paths, err := Match(dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	candidates := make([]*Artifact, 0, len(paths))

	for _, path := range paths {
		var info os.FileInfo

		info, err = os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}

		candidates = append(candidates, &Artifact{
			Name:    info.Name(),
			Path:    path,
			ModTime: info.ModTime(),
			Mode:    info.Mode(),
			Size:    info.Size(),
		})
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no %s file found in %s folder", deploy.ErrArtifactNotFound, pattern, dir)
	}

	slices.SortFunc(candidates, func(a, b *Artifact) int {
		if c := b.ModTime.Compare(a.ModTime); c != 0 {
			return c
		}

		return cmp.Compare(a.Name, b.Name)
	})

	selected := candidates[0]

	if len(candidates) > 1 {
		logger.InfoKV(ctx, "Found several artifacts, using the most recent",
			"count", len(candidates), "artifact", selected.Name)
	}

	return selected, nil
}
