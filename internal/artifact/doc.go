// Package artifact locates server-core jars and moves them into instance folders.
//
// Candidates are matched by a glob pattern and the newest one by modification
// time is selected. Content digests (SHA-256, streamed) decide whether a copy is
// needed, and copies are applied atomically with checksum verification.
package artifact
