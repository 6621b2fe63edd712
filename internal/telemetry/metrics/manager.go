package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests               *prometheus.CounterVec
	CounterHandleRequestPanic     prometheus.Counter
	CounterRateLimitedRequests    prometheus.Counter
	CounterProgramsCreated        prometheus.Counter
	CounterProgramsPublished      prometheus.Counter
	CounterParticipationDecisions *prometheus.CounterVec
	CounterNotificationsPushed    *prometheus.CounterVec
	CounterNotificationsDropped   prometheus.Counter
	CounterWorkoutRecords         prometheus.Counter

	// gauges
	GaugeRequests            prometheus.Gauge
	GaugeLifeSignal          prometheus.Gauge
	GaugeRealtimeConnections prometheus.Gauge
	GaugeDispatcherQueue     prometheus.Gauge

	// histograms
	HistogramRequestDuration *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("wodhub", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("wodhub", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterHandleRequestPanic := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "handle_request_panic",
		Help:      "The total number of serve request panics",
	})
	counterRateLimitedRequests := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rate_limited_requests",
		Help:      "The total number of rate limited requests",
	})
	counterProgramsCreated := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "programs_created",
		Help:      "The total number of created programs",
	})
	counterProgramsPublished := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "programs_published",
		Help:      "The total number of programs opened for participation",
	})
	counterParticipationDecisions := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "participation_decisions",
		Help:      "Creator decisions on participation requests",
	}, []string{"action"})
	counterNotificationsPushed := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "notifications_pushed",
		Help:      "Notifications handed to the realtime bus",
	}, []string{"result"})
	counterNotificationsDropped := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "notifications_dropped",
		Help:      "Notifications dropped because the dispatcher queue was full",
	})
	counterWorkoutRecords := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "workout_records",
		Help:      "The total number of recorded workouts",
	})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_requests",
		Help:      "Current number of requests served",
	})
	gaugeLifeSignal := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "life_signal",
		Help:      "Shows whether the service is alive",
	})
	gaugeRealtimeConnections := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "realtime_connections",
		Help:      "Currently connected websocket clients",
	})
	gaugeDispatcherQueue := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "dispatcher_queue_length",
		Help:      "Events waiting in the notification dispatcher queue",
	})

	histogramRequestDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "Histogram of response time for requests in seconds",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"route", "method", "status_code"})

	return &Manager{
		CounterRequests:               counterRequests,
		CounterHandleRequestPanic:     counterHandleRequestPanic,
		CounterRateLimitedRequests:    counterRateLimitedRequests,
		CounterProgramsCreated:        counterProgramsCreated,
		CounterProgramsPublished:      counterProgramsPublished,
		CounterParticipationDecisions: counterParticipationDecisions,
		CounterNotificationsPushed:    counterNotificationsPushed,
		CounterNotificationsDropped:   counterNotificationsDropped,
		CounterWorkoutRecords:         counterWorkoutRecords,
		GaugeRequests:                 gaugeRequests,
		GaugeLifeSignal:               gaugeLifeSignal,
		GaugeRealtimeConnections:      gaugeRealtimeConnections,
		GaugeDispatcherQueue:          gaugeDispatcherQueue,
		HistogramRequestDuration:      histogramRequestDuration,
	}
}
