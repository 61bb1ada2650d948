package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "trinket"

	metricLabelHandler = "handler"
	metricLabelStatus  = "status"
	metricLabelSource  = "source"
)

// Metrics is the structure that holds all prometheus metrics
var (
	// SavesCompletedCounter count the number of snippets saved successfully
	SavesCompletedCounter = newCounterVec(
		"saves_completed_count",
		"Number of snippet saves that were successfully completed",
	)
	// SavesFailedCounter count the number of saves that had an error
	SavesFailedCounter = newCounterVec(
		"saves_failed_count",
		"Number of snippet saves that failed due to an error",
	)
	// ReloadsCompletedCounter count the number of completed index reloads
	ReloadsCompletedCounter = newCounterVec(
		"reloads_completed_count",
		"Number of index reloads that were successfully completed",
	)
	// ReloadsFailedCounter count the number of reloads that had an error
	ReloadsFailedCounter = newCounterVec(
		"reloads_failed_count",
		"Number of index reloads that failed due to an error",
	)
	// SaveDuration observe the duration of each store save
	SaveDuration = newSummaryVec(
		"save_duration_seconds",
		"Duration in seconds for each successful snippet save",
	)
	// ReloadDuration observe the duration of each store reload
	ReloadDuration = newSummaryVec(
		"reload_duration_seconds",
		"Duration in seconds for each successful index reload",
	)
	// SkippedFilesCounter count the snippet files skipped during a reload
	SkippedFilesCounter = newCounterVec(
		"skipped_files_count",
		"Number of unreadable snippet files skipped while loading the store directory",
	)
	// WatcherEventsCounter count the change events seen in the store directory
	WatcherEventsCounter = newCounterVec(
		"watcher_events_count",
		"Number of change events observed in the snippet directory",
	)
	// ArchivePersistFailedCounter count the number of failed archive bundle writes
	ArchivePersistFailedCounter = newCounterVec(
		"archive_persist_failed_count",
		"Number of failures to persist the snippet archive bundle",
	)
	// ServiceRequestCounter count the number of requests for each service function
	ServiceRequestCounter = newCounterVec(
		"service_request_count",
		"Count of requests for each handler",
		metricLabelHandler, metricLabelStatus, metricLabelSource,
	)
	// ServiceRequestDuration observe the duration of requests for each service function
	ServiceRequestDuration = newSummaryVec(
		"service_request_duration_seconds",
		"Seconds to unmarshal requests, execute a service function and marshal its reponses",
		metricLabelHandler, metricLabelStatus, metricLabelSource,
	)
)

func newSummaryVec(name, help string, labels ...string) *prometheus.SummaryVec {
	vec := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}

func newCounterVec(name, help string, labels ...string) *prometheus.CounterVec {
	vec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}
