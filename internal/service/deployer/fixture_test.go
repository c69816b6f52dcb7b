package deployer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/arclight-deploy/internal/config"
	"github.com/oshokin/arclight-deploy/internal/domain/deploy"
	"github.com/oshokin/arclight-deploy/internal/manager"
)

// fixture is a build repository next to an MCSManager daemon directory.
type fixture struct {
	dir      string
	root     string
	settings string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	f := &fixture{
		dir:      dir,
		root:     filepath.Join(dir, "daemon", "data"),
		settings: filepath.Join(dir, config.DefaultConfigFilename),
	}

	require.NoError(t, os.MkdirAll(filepath.Join(f.root, manager.ConfigFolder), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(f.root, manager.DataFolder), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "server-core"), 0o755))
	require.NoError(t, config.Save(f.settings, &config.Config{LogLevel: "error"}))

	f.writeFile(t, ".env", "# daemon location\n"+config.DefaultManagerPathKey+"="+f.root+"\n")

	return f
}

func (f *fixture) writeFile(t *testing.T, name, contents string) string {
	t.Helper()

	path := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	return path
}

func (f *fixture) addJar(t *testing.T, name, contents string, modTime time.Time) {
	t.Helper()

	path := f.writeFile(t, filepath.Join("server-core", name), contents)
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

// addInstance creates the instance config and, if withData, its data folder.
func (f *fixture) addInstance(t *testing.T, id, startCommand string, withData bool) {
	t.Helper()

	configPath := f.instanceConfig(id)
	contents := `{"nickname":"` + id + `","startCommand":"` + startCommand + `","stopCommand":"stop"}`
	require.NoError(t, os.WriteFile(configPath, []byte(contents), 0o644))

	if withData {
		require.NoError(t, os.Mkdir(f.instanceData(id), 0o755))
	}
}

func (f *fixture) instanceConfig(id string) string {
	return filepath.Join(f.root, manager.ConfigFolder, id+".json")
}

func (f *fixture) instanceData(id string) string {
	return filepath.Join(f.root, manager.DataFolder, id)
}

func (f *fixture) run(t *testing.T, dryRun bool) (*deploy.Summary, string, error) {
	t.Helper()

	return f.runContext(context.Background(), t, dryRun)
}

func (f *fixture) runContext(ctx context.Context, t *testing.T, dryRun bool) (*deploy.Summary, string, error) {
	t.Helper()

	var out bytes.Buffer

	summary, err := Run(ctx, &Options{
		ConfigPath: f.settings,
		WorkDir:    f.dir,
		DryRun:     dryRun,
		Output:     &out,
	})

	return summary, out.String(), err
}

func modTime(t *testing.T, path string) time.Time {
	t.Helper()

	info, err := os.Stat(path)
	require.NoError(t, err)

	return info.ModTime()
}
