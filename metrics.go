package rtkernel

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics wraps the Prometheus instrumentation surface the kernel reports
// through. A nil *Metrics pointer is valid everywhere it's used — every
// method is a no-op guard around a possibly-nil receiver, so
// Config.Metrics is optional.
type Metrics struct {
	running       prometheus.Gauge
	systemCeiling prometheus.Gauge
	ticks         prometheus.Counter
	admitted      prometheus.Counter
	rejected      prometheus.Counter
	readyDepth    *prometheus.GaugeVec
	waitDepth     *prometheus.GaugeVec
	threadTicks   *prometheus.GaugeVec
	switchLatency prometheus.Histogram // registered, but no code path observes into it
}

// NewMetrics constructs and registers a Metrics instance against reg. Pass
// prometheus.NewRegistry() in tests to avoid colliding with the default
// global registry across parallel test kernels.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rtkernel_running_thread",
			Help: "TCB index of the currently running thread, or 15 for the fallback main slot.",
		}),
		systemCeiling: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rtkernel_system_ceiling",
			Help: "Current system ceiling priority; max int32 when no mutex is locked.",
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rtkernel_ticks_total",
			Help: "Total scheduler ticks processed since SchedulerStart.",
		}),
		admitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rtkernel_admission_accepted_total",
			Help: "ThreadCreate calls that passed the Liu-Layland admission test.",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rtkernel_admission_rejected_total",
			Help: "ThreadCreate calls rejected by the Liu-Layland admission test.",
		}),
		readyDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rtkernel_ready_set_depth",
			Help: "1 if the priority's slot is in the ready set, else 0.",
		}, []string{"priority"}),
		waitDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rtkernel_wait_set_depth",
			Help: "1 if the priority's slot is in the wait set, else 0.",
		}, []string{"priority"}),
		threadTicks: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rtkernel_thread_cumulative_ticks",
			Help: "Cumulative CPU ticks charged to each thread slot.",
		}, []string{"priority"}),
		switchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rtkernel_tick_to_switch_seconds",
			Help:    "Wall-clock time from tick delivery to scheduler decision.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	if reg != nil {
		reg.MustRegister(m.running, m.systemCeiling, m.ticks, m.admitted, m.rejected,
			m.readyDepth, m.waitDepth, m.threadTicks, m.switchLatency)
	}
	return m
}

func (m *Metrics) setRunning(idx, priority int) {
	if m == nil {
		return
	}
	m.running.Set(float64(idx))
	_ = priority
}

func (m *Metrics) setSystemCeiling(ceiling int) {
	if m == nil {
		return
	}
	m.systemCeiling.Set(float64(ceiling))
}

func (m *Metrics) setTicks(total uint64) {
	if m == nil {
		return
	}
	m.ticks.Add(1)
	_ = total
}

func (m *Metrics) observeAdmission(accepted bool) {
	if m == nil {
		return
	}
	if accepted {
		m.admitted.Inc()
	} else {
		m.rejected.Inc()
	}
}

func (m *Metrics) observeReadyWait(s readyWaitSets) {
	if m == nil {
		return
	}
	for i := 0; i < MaxUserThreads; i++ {
		r, w := 0.0, 0.0
		if s.ready[i] != -1 {
			r = 1
		}
		if s.wait[i] != -1 {
			w = 1
		}
		m.readyDepth.WithLabelValues(strconv.Itoa(i)).Set(r)
		m.waitDepth.WithLabelValues(strconv.Itoa(i)).Set(w)
	}
}

func (m *Metrics) observeThreadTicks(idx int, total uint64) {
	if m == nil {
		return
	}
	m.threadTicks.WithLabelValues(strconv.Itoa(idx)).Set(float64(total))
}
