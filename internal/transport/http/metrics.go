package httptransport

import "expvar"

var (
	metricActionSubmitTotal  = expvar.NewInt("action_submit_total")
	metricActionSubmitErrors = expvar.NewInt("action_submit_errors_total")

	metricStateReadsTotal = expvar.NewInt("state_reads_total")
)
