package artifact

import "path/filepath"

// Stale lists files in dir matching pattern except the one named keep.
// These are older artifact versions left behind by previous deployments.
func Stale(dir, pattern, keep string) ([]string, error) {
	matches, err := Match(dir, pattern)
	if err != nil {
		return nil, err
	}

	stale := matches[:0]

	for _, path := range matches {
		if filepath.Base(path) == keep {
			continue
		}

		stale = append(stale, path)
	}

	return stale, nil
}
