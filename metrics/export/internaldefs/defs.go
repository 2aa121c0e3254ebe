package internaldefs

import (
	goSession "github.com/MrEthical07/goSession"
)

// CounterDef names one engine counter for exporters.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: goSession.MetricLoginSuccess, Name: "gosession_login_success_total", Help: "Successful logins."},
	{ID: goSession.MetricLoginFailure, Name: "gosession_login_failure_total", Help: "Rejected or failed logins."},
	{ID: goSession.MetricRefreshSuccess, Name: "gosession_refresh_success_total", Help: "Completed refresh rotations."},
	{ID: goSession.MetricRefreshFailure, Name: "gosession_refresh_failure_total", Help: "Rejected or failed refresh attempts."},
	{ID: goSession.MetricRefreshReuseDetected, Name: "gosession_refresh_reuse_detected_total", Help: "Refresh tokens presented after being superseded."},
	{ID: goSession.MetricRefreshExpired, Name: "gosession_refresh_expired_total", Help: "Refresh tokens presented after expiry."},
	{ID: goSession.MetricLogoutSuccess, Name: "gosession_logout_success_total", Help: "Completed logouts."},
	{ID: goSession.MetricLogoutFailure, Name: "gosession_logout_failure_total", Help: "Logouts that failed to clear the refresh record."},
	{ID: goSession.MetricAccountCreationSuccess, Name: "gosession_account_creation_success_total", Help: "Created accounts."},
	{ID: goSession.MetricAccountCreationDuplicate, Name: "gosession_account_creation_duplicate_total", Help: "Sign-ups rejected for a taken e-mail."},
	{ID: goSession.MetricAccountCreationFailure, Name: "gosession_account_creation_failure_total", Help: "Sign-ups rejected or failed for other reasons."},
	{ID: goSession.MetricPasswordHashUpgraded, Name: "gosession_password_hash_upgraded_total", Help: "Password hashes rewritten with current parameters at login."},
	{ID: goSession.MetricValidateSuccess, Name: "gosession_validate_success_total", Help: "Accepted access tokens."},
	{ID: goSession.MetricValidateFailure, Name: "gosession_validate_failure_total", Help: "Rejected access tokens."},
}

var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricValidateLatency, Name: "gosession_validate_latency_seconds", Help: "Access token validation latency."},
}

// HistogramBounds are the finite upper bounds in seconds. The last engine
// bucket is +Inf.
var HistogramBounds = [goSession.HistogramBucketCount - 1]float64{
	0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5,
}

// HistogramBoundSuffix is used where a bound has to appear in an instrument name.
var HistogramBoundSuffix = [goSession.HistogramBucketCount]string{
	"0_005", "0_01", "0_025", "0_05", "0_1", "0_25", "0_5", "inf",
}

// NormalizeBuckets pads or truncates raw to the engine bucket count.
func NormalizeBuckets(raw []uint64) [goSession.HistogramBucketCount]uint64 {
	var out [goSession.HistogramBucketCount]uint64
	copy(out[:], raw)
	return out
}

func CumulativeBuckets(raw [goSession.HistogramBucketCount]uint64) [goSession.HistogramBucketCount]uint64 {
	var out [goSession.HistogramBucketCount]uint64
	var running uint64
	for i, v := range raw {
		running += v
		out[i] = running
	}
	return out
}
