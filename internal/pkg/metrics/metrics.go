// Package metrics defines and registers all custom Prometheus metrics for the
// cogere artifact host. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cogere"

// ── Authentication metrics ───────────────────────────────────────────────────

// IdentityResolutionsTotal counts identity resolution outcomes.
// Labels:
//   - method: "session", "machine_key" or "none"
//   - result: "ok", "unauthorized" or "error"
var IdentityResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "identity_resolutions_total",
		Help:      "Total number of request identity resolutions, by method and result.",
	},
	[]string{"method", "result"},
)

// LoginsTotal counts password logins.
// Label:
//   - result: "ok", "rejected" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of password login attempts, by result.",
	},
	[]string{"result"},
)

// PermissionDecisionsTotal counts permission checks.
// Labels:
//   - permission: e.g. "upload_plugin"
//   - decision: "allow" or "deny"
var PermissionDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "permission_decisions_total",
		Help:      "Total number of permission checks, by permission and decision.",
	},
	[]string{"permission", "decision"},
)

// CredentialVerificationsTotal counts hash comparisons run by the verifier pool.
// Label:
//   - result: "match", "mismatch", "malformed" or "failed"
var CredentialVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credential_verifications_total",
		Help:      "Total number of credential hash comparisons, by result.",
	},
	[]string{"result"},
)

// CredentialVerificationDuration measures a single hash comparison.
var CredentialVerificationDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "credential_verification_duration_seconds",
		Help:      "Duration of a single credential hash comparison inside a worker.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	},
)

// ── Blob store metrics ───────────────────────────────────────────────────────

// BlobOperationsTotal counts blob store calls.
// Labels:
//   - op: "put", "get", "delete" or "exists"
//   - result: "ok", "not_found" or "error"
var BlobOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "blob_operations_total",
		Help:      "Total number of blob store operations, by operation and result.",
	},
	[]string{"op", "result"},
)

// ── Plugin metrics ───────────────────────────────────────────────────────────

// PluginUploadsTotal counts completed uploads.
// Label:
//   - principal: "user" or "machine"
var PluginUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "plugin_uploads_total",
		Help:      "Total number of plugin artifacts uploaded, by principal kind.",
	},
	[]string{"principal"},
)

// PluginUploadBytes tracks the size of uploaded artifacts.
var PluginUploadBytes = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "plugin_upload_bytes",
		Help:      "Size of uploaded plugin artifacts in bytes.",
		Buckets:   prometheus.ExponentialBuckets(1024, 4, 10), // 1KiB … 256MiB
	},
)
