package daemon

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/stephencockerill/oink/internal/bank"
)

// Metrics holds the prometheus collectors exported at /metrics.
type Metrics struct {
	registry *prometheus.Registry

	ActualBalance    prometheus.Gauge
	LedgerBalance    prometheus.Gauge
	Streak           prometheus.Gauge
	AvailableFreezes prometheus.Gauge
	Mutations        *prometheus.CounterVec
	Reminders        prometheus.Counter
	Requests         *prometheus.CounterVec
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		ActualBalance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "oink_actual_balance_dollars",
			Help: "Spendable balance after cash-outs and freeze spending",
		}),
		LedgerBalance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "oink_ledger_balance_dollars",
			Help: "Balance of the most recent ledger entry",
		}),
		Streak: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "oink_streak_days",
			Help: "Current exercise streak",
		}),
		AvailableFreezes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "oink_available_freezes",
			Help: "Streak freezes in the inventory",
		}),
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oink_mutations_total",
				Help: "Published snapshots by the mutation that caused them",
			},
			[]string{"cause"},
		),
		Reminders: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oink_reminders_sent_total",
			Help: "Daily reminders delivered",
		}),
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oink_http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"route", "status"},
		),
	}

	m.registry.MustRegister(
		m.ActualBalance,
		m.LedgerBalance,
		m.Streak,
		m.AvailableFreezes,
		m.Mutations,
		m.Reminders,
		m.Requests,
	)
	return m
}

// Observe updates the gauges from a snapshot and counts its cause.
func (m *Metrics) Observe(snap bank.Snapshot) {
	m.ActualBalance.Set(snap.ActualBalance.InexactFloat64())
	m.LedgerBalance.Set(snap.LedgerBalance.InexactFloat64())
	m.Streak.Set(float64(snap.Streak))
	m.AvailableFreezes.Set(float64(snap.AvailableFreezes))
	if snap.Cause != "" && snap.Cause != bank.CauseRefresh {
		m.Mutations.WithLabelValues(snap.Cause).Inc()
	}
}
