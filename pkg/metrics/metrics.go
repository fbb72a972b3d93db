package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var HistogramBuckets = []float64{
	// fast responses (0 - 500ms)
	25, 50, 75, 100, 150, 200, 300, 400, 500,
	// medium responses (500ms - 2s)
	750, 1000, 1250, 1500, 1750, 2000,
	// slow responses (2s - 15s)
	2500, 3000, 4000, 5000, 7500, 10000, 15000,
	// extended range for long polls and batch work
	20000, 30000, 45000, 60000,
}

// Metric is a definition for the name, description, type, ID, and
// prometheus.Collector type (i.e. CounterVec, Summary, etc) of each metric
type Metric struct {
	MetricCollector prometheus.Collector
	ID              string
	Name            string
	Description     string
	Type            string
	Args            []string
}

// NewMetric associates prometheus.Collector based on Metric.Type
func NewMetric(m *Metric, subsystem string) prometheus.Collector {
	var metric prometheus.Collector
	switch m.Type {
	case "counter_vec":
		metric = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
			m.Args,
		)
	case "counter":
		metric = prometheus.NewCounter(
			prometheus.CounterOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
		)
	case "gauge_vec":
		metric = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
			m.Args,
		)
	case "gauge":
		metric = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
		)
	case "histogram_vec":
		metric = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
			m.Args,
		)
	case "histogram":
		metric = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
				Buckets:   HistogramBuckets,
			},
		)
	case "summary_vec":
		metric = prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
			m.Args,
		)
	case "summary":
		metric = prometheus.NewSummary(
			prometheus.SummaryOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
		)
	}
	return metric
}

// Domain metrics for the reminder pipeline.
var (
	// ReminderSent counts reminder emails successfully delivered,
	// partitioned by checkpoint label.
	ReminderSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reminder_sent_total",
		Help: "Reminder emails sent, partitioned by checkpoint label.",
	}, []string{"label"})

	// WorkflowRunsDue tracks how many workflow runs the last scheduler
	// tick found due.
	WorkflowRunsDue = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "workflow_runs_due",
		Help: "Workflow runs found due on the last scheduler tick.",
	})

	// TimerOverdue counts wake-ups honored later than the configured
	// staleness threshold. Any increase is a scheduling-infrastructure
	// fault, not a workflow condition.
	TimerOverdue = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "workflow_timer_overdue_total",
		Help: "Durable timer wake-ups honored past the staleness threshold.",
	})
)

func init() {
	prometheus.MustRegister(ReminderSent, WorkflowRunsDue, TimerOverdue)
}

const (
	RefererKey = "X-Referer"
)
