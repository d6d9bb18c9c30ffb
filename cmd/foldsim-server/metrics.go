package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/strandlab/foldsim/internal/kinetics"
)

// serverMetrics tracks trajectory lifecycle counters served at /metrics.
type serverMetrics struct {
	trajectoriesStarted  prometheus.Counter
	trajectoriesFinished *prometheus.CounterVec
	stepsTotal           prometheus.Counter
	simTimeSeconds       prometheus.Histogram
}

func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	factory := promauto.With(reg)
	return &serverMetrics{
		trajectoriesStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "foldsim_trajectories_started_total",
			Help: "Number of trajectories started.",
		}),
		trajectoriesFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "foldsim_trajectories_finished_total",
			Help: "Number of trajectories finished, by stop reason.",
		}, []string{"stop_reason"}),
		stepsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "foldsim_trajectory_steps_total",
			Help: "Total reaction events fired across finished trajectories.",
		}),
		simTimeSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "foldsim_trajectory_sim_time_seconds",
			Help:    "Simulated time reached by finished trajectories.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 10, 12),
		}),
	}
}

// observeFinished records one finished trajectory.
func (m *serverMetrics) observeFinished(res kinetics.TrajectoryResult) {
	m.trajectoriesFinished.WithLabelValues(string(res.StopReason)).Inc()
	m.stepsTotal.Add(float64(res.Steps))
	m.simTimeSeconds.Observe(res.FinalTime)
}
