package artifact

import (
	"crypto"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"
)

// defaultFileMode is used when the source mode is unknown.
const defaultFileMode os.FileMode = 0o644

// Install copies a into dir under its own name. The new file is written next
// to the target, verified against a.Digest and renamed into place; mode and
// modification time are copied from the source. On failure a placeholder
// created by Install is removed again.
func Install(a *Artifact, dir string) (target string, err error) {
	if a.Digest == "" {
		if err := a.ComputeDigest(); err != nil {
			return "", err
		}
	}

	checksum, err := hex.DecodeString(a.Digest.Encoded())
	if err != nil {
		return "", fmt.Errorf("decode digest %s: %w", a.Digest, err)
	}

	mode := a.Mode.Perm()
	if mode == 0 {
		mode = defaultFileMode
	}

	target = filepath.Join(dir, a.Name)

	// The apply step renames the existing target aside, so it has to exist.
	if _, err = os.Stat(target); errors.Is(err, os.ErrNotExist) {
		var placeholder *os.File

		placeholder, err = os.Create(target)
		if err != nil {
			return "", err
		}

		defer func() {
			if err != nil {
				_ = os.Remove(target)
			}
		}()

		if err = placeholder.Close(); err != nil {
			return "", err
		}
	}

	source, err := os.Open(filepath.Clean(a.Path))
	if err != nil {
		return "", err
	}

	defer func() {
		_ = source.Close()
	}()

	options := goupdate.Options{
		TargetPath: target,
		TargetMode: mode,
		Checksum:   checksum,
		Hash:       crypto.SHA256,
	}

	if err = goupdate.Apply(source, options); err != nil {
		return "", fmt.Errorf("apply %s: %w", target, err)
	}

	if err = os.Chmod(target, mode); err != nil {
		return "", err
	}

	if err = os.Chtimes(target, a.ModTime, a.ModTime); err != nil {
		return "", err
	}

	return target, nil
}
