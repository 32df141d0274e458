package engine

import "expvar"

var (
	metricActionsTotal     = expvar.NewInt("engine_actions_total")
	metricAutoActionsTotal = expvar.NewInt("engine_auto_actions_total")

	metricGuardBlocksTotal = expvar.NewInt("engine_guard_blocks_total")
	metricTransitions      = expvar.NewMap("engine_transitions_total")

	metricJobFailuresTotal   = expvar.NewInt("engine_job_failures_total")
	metricSnapshotsPublished = expvar.NewInt("engine_snapshots_published_total")
)
