package warn

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var warnsRegistered = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pancywarn_warns_registered_total",
	Help: "Number of warns persisted, by resulting punishment kind",
}, []string{"action"})

var warnRegisterErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pancywarn_warn_register_errors_total",
	Help: "Number of warn registrations that failed, by error class",
}, []string{"class"})

var warnsRemoved = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pancywarn_warns_removed_total",
	Help: "Number of warns deleted, by reason",
}, []string{"reason"})

var punishmentsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pancywarn_punishments_applied_total",
	Help: "Number of punishments the platform accepted",
}, []string{"action"})

var punishmentFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pancywarn_punishment_failures_total",
	Help: "Number of punishments that could not be applied",
}, []string{"action"})

var storeOpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "pancywarn_store_op_duration_sec",
	Help: "Duration of warn store operations",
}, []string{"op"})

var cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pancywarn_cache_lookups_total",
	Help: "Active-warn cache lookups, by result",
}, []string{"result"})
