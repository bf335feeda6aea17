// Package observability wires tracing and metrics for the service. This file
// defines the Prometheus collectors for the lead pipeline itself, as opposed
// to the generic HTTP metrics emitted by the middleware layer.
package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	// LeadsAssigned counts leads routed to a contractor, labeled by whether
	// the allocator took the overflow path.
	LeadsAssigned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_assigned_total",
			Help: "Total number of leads assigned to contractors.",
		},
		[]string{"overflow"},
	)

	// LeadsRejected counts intake requests rejected because no contractor
	// covers the lead's county and job type.
	LeadsRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_rejected_no_coverage_total",
			Help: "Total number of lead submissions rejected for lack of coverage.",
		},
	)

	// Charges counts billing attempts by outcome status or rejection reason
	// (succeeded, failed, daily_budget_exceeded).
	Charges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_charges_total",
			Help: "Total number of lead charge attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// SMSSends counts contractor notifications by result.
	SMSSends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_sms_total",
			Help: "Total number of contractor SMS notifications by result.",
		},
		[]string{"result"},
	)

	// RetrySweeps counts retry-sweep runs; RetrySweepRecovered counts charges
	// recovered by the sweep.
	RetrySweeps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "charge_retry_sweeps_total",
			Help: "Total number of failed-charge retry sweeps executed.",
		},
	)
	RetrySweepRecovered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "charge_retry_recovered_total",
			Help: "Total number of failed charges recovered by retry sweeps.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		LeadsAssigned,
		LeadsRejected,
		Charges,
		SMSSends,
		RetrySweeps,
		RetrySweepRecovered,
	)
}
