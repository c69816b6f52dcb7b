package deploy

import "errors"

var (
	// ErrConfigMissing is returned when the environment file or a required setting is absent.
	ErrConfigMissing = errors.New("configuration missing")
	// ErrPathInvalid is returned when the manager path or one of its folders does not exist.
	ErrPathInvalid = errors.New("path invalid")
	// ErrArtifactNotFound is returned when no artifact matches the naming pattern.
	ErrArtifactNotFound = errors.New("artifact not found")
	// ErrRegistryMalformed is returned when the registry file is absent or cannot be decoded.
	ErrRegistryMalformed = errors.New("registry malformed")
	// ErrInstanceSkipped marks a registry entry that was left untouched.
	ErrInstanceSkipped = errors.New("instance skipped")
)

// IsSetupError reports whether err aborts the run before any instance is processed.
func IsSetupError(err error) bool {
	return errors.Is(err, ErrConfigMissing) ||
		errors.Is(err, ErrPathInvalid) ||
		errors.Is(err, ErrArtifactNotFound) ||
		errors.Is(err, ErrRegistryMalformed)
}
