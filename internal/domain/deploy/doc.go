// Package deploy contains the core domain types of a deployment run.
//
// It defines the error kinds used to separate fatal setup failures from
// per-instance problems, the Summary counters reported at the end of a run,
// and the start command rewrite applied to every instance.
package deploy
