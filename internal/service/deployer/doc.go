// Package deployer propagates the newest server-core jar to every MCSManager
// instance listed in the global registry.
//
// A run loads settings, the .env file and the registry, selects the artifact,
// then walks the registry in order: stale jars are removed, the artifact is
// copied when its digest differs, and the instance start command is rewritten
// when it changed. Setup errors abort the run; instance errors are logged and
// the run continues with the next server.
package deployer
