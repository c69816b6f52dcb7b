package deployer

import (
	"context"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/arclight-deploy/internal/logger"
)

// javaExecutables are the process names of a running game server.
//
//nolint:gochecknoglobals // Read-only lookup table.
var javaExecutables = map[string]struct{}{
	"java":      {},
	"java.exe":  {},
	"javaw.exe": {},
}

// countJavaProcesses returns how many java processes list reports.
func countJavaProcesses(list func() ([]ps.Process, error)) (int, error) {
	processList, err := list()
	if err != nil {
		return 0, err
	}

	count := 0

	for _, process := range processList {
		if _, found := javaExecutables[strings.ToLower(process.Executable())]; found {
			count++
		}
	}

	return count, nil
}

// warnRunningServers logs a warning when game servers are running: they keep
// the previous jar open until MCSManager restarts them.
func warnRunningServers(ctx context.Context) {
	count, err := countJavaProcesses(ps.Processes)
	if err != nil {
		logger.DebugKV(ctx, "Unable to list processes", "error", err)
		return
	}

	if count == 0 {
		return
	}

	logger.WarnKV(ctx, "Java processes are running; restart the instances to load the new jar",
		"count", count)
}
