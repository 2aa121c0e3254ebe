package goSession

import internalmetrics "github.com/MrEthical07/goSession/internal/metrics"

// MetricID identifies one engine counter.
type MetricID = internalmetrics.MetricID

// MetricsSnapshot is returned by [Engine.MetricsSnapshot] and read by the
// exporters in metrics/export.
type MetricsSnapshot = internalmetrics.Snapshot

const (
	MetricLoginSuccess             = internalmetrics.MetricLoginSuccess
	MetricLoginFailure             = internalmetrics.MetricLoginFailure
	MetricRefreshSuccess           = internalmetrics.MetricRefreshSuccess
	MetricRefreshFailure           = internalmetrics.MetricRefreshFailure
	MetricRefreshReuseDetected     = internalmetrics.MetricRefreshReuseDetected
	MetricRefreshExpired           = internalmetrics.MetricRefreshExpired
	MetricLogoutSuccess            = internalmetrics.MetricLogoutSuccess
	MetricLogoutFailure            = internalmetrics.MetricLogoutFailure
	MetricAccountCreationSuccess   = internalmetrics.MetricAccountCreationSuccess
	MetricAccountCreationDuplicate = internalmetrics.MetricAccountCreationDuplicate
	MetricAccountCreationFailure   = internalmetrics.MetricAccountCreationFailure
	MetricPasswordHashUpgraded     = internalmetrics.MetricPasswordHashUpgraded
	MetricValidateSuccess          = internalmetrics.MetricValidateSuccess
	MetricValidateFailure          = internalmetrics.MetricValidateFailure
	MetricValidateLatency          = internalmetrics.MetricValidateLatency
)

// HistogramBucketCount is the number of buckets in each latency histogram.
const HistogramBucketCount = internalmetrics.HistogramBucketCount
