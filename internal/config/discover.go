package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Discover looks for DefaultConfigFilename in dir, then in the XDG config
// directories under AppName. It returns "" when none exists.
func Discover(dir string) string {
	local := filepath.Join(dir, DefaultConfigFilename)
	if info, err := os.Stat(local); err == nil && !info.IsDir() {
		return local
	}

	path, err := xdg.SearchConfigFile(filepath.Join(AppName, DefaultConfigFilename))
	if err != nil {
		return ""
	}

	return path
}
