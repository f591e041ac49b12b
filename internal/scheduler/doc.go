// Package scheduler drives the pipeline's two triggers.
//
// Jobs are logically independent: cron runs every entry in its own
// goroutine, so a slow calendar scan never delays a poll firing. A job
// does not overlap itself (a firing while the previous run is still
// going is skipped), panics are recovered, and a failed run never
// cancels the job's future firings.
package scheduler
