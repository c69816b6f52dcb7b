package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"

	// Ensure SHA256 available for digest calculation.
	_ "crypto/sha256"
)

var errHashUnavailable = errors.New("hash function unavailable")

// DigestAlgorithm is used to fingerprint artifacts.
const DigestAlgorithm = digest.SHA256

// Digest streams the file at path through DigestAlgorithm.
func Digest(path string) (digest.Digest, error) {
	if !DigestAlgorithm.Available() {
		return "", fmt.Errorf("digest calculation not possible: %w", errHashUnavailable)
	}

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", err
	}

	defer func() {
		_ = file.Close()
	}()

	sum, err := DigestAlgorithm.FromReader(file)
	if err != nil {
		return "", fmt.Errorf("digest %s: %w", path, err)
	}

	return sum, nil
}

// ComputeDigest fills a.Digest from the source file.
func (a *Artifact) ComputeDigest() error {
	sum, err := Digest(a.Path)
	if err != nil {
		return err
	}

	a.Digest = sum

	return nil
}

// NeedsCopy reports whether target must be (re)written with a: true when the
// target is absent or its digest differs.
func NeedsCopy(a *Artifact, target string) (bool, error) {
	if a.Digest == "" {
		if err := a.ComputeDigest(); err != nil {
			return false, err
		}
	}

	if _, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return true, nil
		}

		return false, err
	}

	targetDigest, err := Digest(target)
	if err != nil {
		return false, err
	}

	return targetDigest != a.Digest, nil
}
