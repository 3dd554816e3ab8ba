// Package metrics registers the service's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DurableWrites counts completed durable store writes, by table and action.
	DurableWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workspace",
		Name:      "durable_writes_total",
		Help:      "Completed durable store writes.",
	}, []string{"table", "action"})

	// AutosaveFlushes counts draft flushes, by trigger (timer, switch, mode, close, manual).
	AutosaveFlushes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workspace",
		Name:      "autosave_flushes_total",
		Help:      "Draft flushes written to the store.",
	}, []string{"trigger"})

	// AutosaveDebounces counts debounce timer re-arms.
	AutosaveDebounces = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "workspace",
		Name:      "autosave_debounces_total",
		Help:      "Autosave debounce timer re-arms.",
	})

	// WorkspaceLoads counts full mirror refreshes from the durable store.
	WorkspaceLoads = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "workspace",
		Name:      "loads_total",
		Help:      "Full workspace mirror refreshes.",
	})

	// BackupsCreated counts backup archives written.
	BackupsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workspace",
		Name:      "backups_created_total",
		Help:      "Backup archives created.",
	}, []string{"kind"})
)
