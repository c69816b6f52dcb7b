// Package instance implements persistence for MCSManager instance configs.
//
// The FileRepository loads and saves one <id>.json file and exposes a
// Repository interface that the deployer depends on. Unknown fields and their
// order survive a rewrite.
package instance
