package integration

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
	"github.com/oshokin/arclight-deploy/internal/service/deployer"
)

const (
	survivalID = "3c1f0d6a9b2e4f1c8d7a6b5c4d3e2f10"
	lobbyID    = "9e8d7c6b5a4f43e2b1c0d9e8f7a6b5c4"
	oldJar     = "arclight-forge-1.20.1-1.0.4.jar"
	newJar     = "arclight-forge-1.20.1-1.0.5.jar"
)

// workspace lays out a build repository (.env, global.json, server-core/)
// and an MCSManager daemon directory under one temp folder.
type workspace struct {
	dir  string
	root string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()

	dir := t.TempDir()
	ws := &workspace{
		dir:  dir,
		root: filepath.Join(dir, "mcsmanager", "daemon", "data"),
	}

	for _, sub := range []string{
		filepath.Join(ws.root, "InstanceConfig"),
		filepath.Join(ws.root, "InstanceData"),
		filepath.Join(dir, "server-core"),
	} {
		require.NoError(t, os.MkdirAll(sub, 0o755))
	}

	require.NoError(t, config.Save(filepath.Join(dir, config.DefaultConfigFilename), &config.Config{LogLevel: "warn"}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("# Path to the MCSManager daemon data directory\n\nMCSMANAGER_DEMON_PATH="+ws.root+"\n"), 0o600))

	return ws
}

func (ws *workspace) jar(t *testing.T, name, contents string, modTime time.Time) {
	t.Helper()

	path := filepath.Join(ws.dir, "server-core", name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

func (ws *workspace) registry(t *testing.T, contents string) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(ws.dir, "global.json"), []byte(contents), 0o600))
}

func (ws *workspace) instance(t *testing.T, id string, withData bool) {
	t.Helper()

	contents := `{
  "nickname": "` + id + `",
  "startCommand": "java -Xmx6G -jar arclight.jar nogui",
  "stopCommand": "stop",
  "cwd": "",
  "ie": "utf-8",
  "oe": "utf-8"
}`
	require.NoError(t, os.WriteFile(ws.configPath(id), []byte(contents), 0o644))

	if withData {
		require.NoError(t, os.Mkdir(ws.dataDir(id), 0o755))
	}
}

func (ws *workspace) configPath(id string) string {
	return filepath.Join(ws.root, "InstanceConfig", id+".json")
}

func (ws *workspace) dataDir(id string) string {
	return filepath.Join(ws.root, "InstanceData", id)
}

func (ws *workspace) deploy(t *testing.T) *deploy.Summary {
	t.Helper()

	var out bytes.Buffer

	summary, err := deployer.Run(context.Background(), &deployer.Options{
		ConfigPath: filepath.Join(ws.dir, config.DefaultConfigFilename),
		WorkDir:    ws.dir,
		Output:     &out,
	})
	require.NoError(t, err)
	require.Contains(t, out.String(), "Deployment complete.")

	return summary
}

func modTime(t *testing.T, path string) time.Time {
	t.Helper()

	info, err := os.Stat(path)
	require.NoError(t, err)

	return info.ModTime()
}

// TestDeploy_MissingDataFolderDoesNotAbort updates one server and warns about the other.
func TestDeploy_MissingDataFolderDoesNotAbort(t *testing.T) {
	t.Parallel()

	ws := newWorkspace(t)
	ws.jar(t, newJar, "new-jar", time.Now().Add(-time.Minute))
	ws.instance(t, survivalID, true)
	ws.instance(t, lobbyID, false)
	ws.registry(t, `{
  "Survival": {"id": "`+survivalID+`", "startup_command": "java -Xmx6G -jar arclight.jar nogui"},
  "Lobby": {"id": "`+lobbyID+`", "startup_command": "java -Xmx2G -jar arclight.jar nogui"}
}`)

	summary := ws.deploy(t)
	require.Equal(t, 1, summary.ConfigsUpdated)
	require.Equal(t, 1, summary.ArtifactsCopied)
	require.Equal(t, 1, summary.InstancesFailed)

	contents, err := os.ReadFile(ws.configPath(survivalID))
	require.NoError(t, err)
	require.Contains(t, string(contents), `"startCommand": "java -Xmx6G -jar `+newJar+` nogui"`)
	require.Contains(t, string(contents), `"ie": "utf-8"`)

	jar, err := os.ReadFile(filepath.Join(ws.dataDir(survivalID), newJar))
	require.NoError(t, err)
	require.Equal(t, "new-jar", string(jar))

	contents, err = os.ReadFile(ws.configPath(lobbyID))
	require.NoError(t, err)
	require.Contains(t, string(contents), "arclight.jar nogui")
}

// TestDeploy_Idempotent runs twice and expects the second run to change nothing.
func TestDeploy_Idempotent(t *testing.T) {
	t.Parallel()

	ws := newWorkspace(t)
	ws.jar(t, oldJar, "old-jar", time.Now().Add(-2*time.Hour))
	ws.jar(t, newJar, "new-jar", time.Now().Add(-time.Hour))
	ws.instance(t, survivalID, true)
	ws.registry(t, `{"Survival": {"id": "`+survivalID+`", "startup_command": "java -Xmx6G -jar arclight.jar nogui"}}`)

	// A previous deployment left the older jar behind.
	require.NoError(t, os.WriteFile(filepath.Join(ws.dataDir(survivalID), oldJar), []byte("old-jar"), 0o644))

	first := ws.deploy(t)
	require.Equal(t, &deploy.Summary{
		ConfigsUpdated:  1,
		ArtifactsCopied: 1,
		StaleRemoved:    1,
	}, first)
	require.NoFileExists(t, filepath.Join(ws.dataDir(survivalID), oldJar))

	var (
		jarPath       = filepath.Join(ws.dataDir(survivalID), newJar)
		jarModTime    = modTime(t, jarPath)
		configModTime = modTime(t, ws.configPath(survivalID))
	)

	second := ws.deploy(t)
	require.Equal(t, &deploy.Summary{CopiesSkipped: 1}, second)
	require.False(t, second.Changed())
	require.Equal(t, jarModTime, modTime(t, jarPath))
	require.Equal(t, configModTime, modTime(t, ws.configPath(survivalID)))
}

// TestDeploy_IdenticalJarIsNotCopied leaves a matching jar untouched.
func TestDeploy_IdenticalJarIsNotCopied(t *testing.T) {
	t.Parallel()

	ws := newWorkspace(t)
	ws.jar(t, newJar, "same-bytes", time.Now())
	ws.instance(t, survivalID, true)
	ws.registry(t, `{"Survival": {"id": "`+survivalID+`", "startup_command": "java -Xmx6G -jar arclight.jar nogui"}}`)

	existing := filepath.Join(ws.dataDir(survivalID), newJar)
	past := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.WriteFile(existing, []byte("same-bytes"), 0o644))
	require.NoError(t, os.Chtimes(existing, past, past))

	summary := ws.deploy(t)
	require.Equal(t, 0, summary.ArtifactsCopied)
	require.Equal(t, 1, summary.CopiesSkipped)
	require.Equal(t, 1, summary.ConfigsUpdated)
	require.True(t, modTime(t, existing).Equal(past))
}

// TestDeploy_UnchangedConfigIsNotWritten keeps the config file when the command already matches.
func TestDeploy_UnchangedConfigIsNotWritten(t *testing.T) {
	t.Parallel()

	ws := newWorkspace(t)
	ws.jar(t, newJar, "jar", time.Now())
	ws.instance(t, survivalID, true)

	// The stored command has no placeholder and the template matches it exactly.
	ws.registry(t, `{"Survival": {"id": "`+survivalID+`", "startup_command": "java -Xmx6G -jar arclight.jar nogui"}}`)

	ws.deploy(t)

	past := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(ws.configPath(survivalID), past, past))

	summary := ws.deploy(t)
	require.Equal(t, 0, summary.ConfigsUpdated)
	require.True(t, modTime(t, ws.configPath(survivalID)).Equal(past))
}
