// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV/WithFields),
//   - an optional rotating JSON log file next to the console output,
//   - level parsing and convenience functions (Infof, WarnKV, etc.).
//
// The deployer receives a context and extracts the logger from it, so every
// message about an instance carries the server name.
package logger
