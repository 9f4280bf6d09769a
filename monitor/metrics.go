package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cycleCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "monitor_poll_cycles",
	Help: "Number of poll cycles started",
})

var cycleErrorCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "monitor_poll_cycle_errors",
	Help: "Number of poll cycles aborted by an error",
})

var creatorsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "monitor_creators_processed",
	Help: "Number of creator records handled, by outcome",
}, []string{"outcome"})

var highValueCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "monitor_high_value_creators",
	Help: "Number of creators escalated to the high tier",
}, []string{"signal"})

var notificationErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "monitor_notification_errors",
	Help: "Number of notification sends that failed after fallback",
}, []string{"tier"})
