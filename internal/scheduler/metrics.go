package scheduler

import "expvar"

var (
	metricJobRuns   = expvar.NewMap("scheduler_job_runs_total")
	metricJobErrors = expvar.NewMap("scheduler_job_errors_total")
)
