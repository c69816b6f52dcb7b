package deploy

import (
	"fmt"
	"io"
	"strings"
)

// Summary accumulates the outcome of a deployment run.
type Summary struct {
	// ConfigsUpdated counts instance configs whose start command was rewritten.
	ConfigsUpdated int
	// ArtifactsCopied counts instances that received a fresh artifact copy.
	ArtifactsCopied int
	// CopiesSkipped counts instances that already held an identical artifact.
	CopiesSkipped int
	// StaleRemoved counts old artifact files removed from instance folders.
	StaleRemoved int
	// InstancesFailed counts registry entries that were skipped or failed.
	InstancesFailed int
}

// Merge adds the counters of another summary.
func (s *Summary) Merge(other *Summary) {
	if other == nil {
		return
	}

	s.ConfigsUpdated += other.ConfigsUpdated
	s.ArtifactsCopied += other.ArtifactsCopied
	s.CopiesSkipped += other.CopiesSkipped
	s.StaleRemoved += other.StaleRemoved
	s.InstancesFailed += other.InstancesFailed
}

// Changed reports whether the run modified anything on disk.
func (s *Summary) Changed() bool {
	return s.ConfigsUpdated > 0 || s.ArtifactsCopied > 0 || s.StaleRemoved > 0
}

// String renders the final tally.
func (s *Summary) String() string {
	var builder strings.Builder

	builder.WriteString("\n=== Deployment Summary ===\n")
	fmt.Fprintf(&builder, "Config updates: %d\n", s.ConfigsUpdated)
	fmt.Fprintf(&builder, "Jars copied: %d\n", s.ArtifactsCopied)
	fmt.Fprintf(&builder, "Jars skipped (already up-to-date): %d\n", s.CopiesSkipped)
	fmt.Fprintf(&builder, "Stale jars removed: %d\n", s.StaleRemoved)
	fmt.Fprintf(&builder, "Instances failed: %d\n", s.InstancesFailed)
	builder.WriteString("Deployment complete.\n")

	return builder.String()
}

// WriteReport prints the final tally to w.
func (s *Summary) WriteReport(w io.Writer) error {
	_, err := io.WriteString(w, s.String())

	return err
}
