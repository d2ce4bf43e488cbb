package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	OperationsTotal *prometheus.CounterVec
	EscrowHeld      prometheus.Gauge
	JobsTotal       *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		OperationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "datamart_operations_total",
			Help: "Total number of marketplace operations by outcome",
		}, []string{"op", "outcome"}),
		EscrowHeld: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "datamart_escrow_held_units",
			Help: "Funds currently held in escrow for pending and processing jobs",
		}),
		JobsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "datamart_jobs_total",
			Help: "Total number of training jobs entering each status",
		}, []string{"status"}),
	}
}

// ObserveOp records one operation outcome. Safe on a nil receiver so tests
// can run services without a registry.
func (m *Metrics) ObserveOp(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.OperationsTotal.WithLabelValues(op, outcome).Inc()
}

// AddEscrow adjusts the escrow gauge by delta units.
func (m *Metrics) AddEscrow(delta float64) {
	if m == nil {
		return
	}
	m.EscrowHeld.Add(delta)
}

// ObserveJobStatus counts a job entering a status.
func (m *Metrics) ObserveJobStatus(status string) {
	if m == nil {
		return
	}
	m.JobsTotal.WithLabelValues(status).Inc()
}
