package metrics

import (
	"sync/atomic"
	"time"
)

// MetricID indexes a counter slot.
type MetricID uint16

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricRefreshSuccess
	MetricRefreshFailure
	MetricRefreshReuseDetected
	MetricRefreshExpired
	MetricLogoutSuccess
	MetricLogoutFailure
	MetricAccountCreationSuccess
	MetricAccountCreationDuplicate
	MetricAccountCreationFailure
	MetricPasswordHashUpgraded
	MetricValidateSuccess
	MetricValidateFailure
	MetricValidateLatency
	MetricIDCount
)

// HistogramBucketCount is the number of fixed latency buckets.
const HistogramBucketCount = 8

const cacheLineSize = 64

type histogram struct {
	buckets [HistogramBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds one padded counter per MetricID and a latency histogram for
// access-token validation. A nil *Metrics records nothing.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [MetricIDCount]paddedCounter
	histograms    [MetricIDCount]histogram
}

// Snapshot is a point-in-time copy of every counter and histogram.
type Snapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

func New(enabled, latency bool) *Metrics {
	return &Metrics{
		enabled:       enabled,
		enableLatency: enabled && latency,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in the histogram for id. Only MetricValidateLatency
// carries a histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if !m.LatencyEnabled() || id != MetricValidateLatency {
		return
	}
	atomic.AddUint64(&m.histograms[id].buckets[bucketIndex(d)], 1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= MetricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

func (m *Metrics) Snapshot() Snapshot {
	if !m.Enabled() {
		return Snapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := Snapshot{
		Counters:   make(map[MetricID]uint64, int(MetricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}
	for id := MetricID(0); id < MetricIDCount; id++ {
		if id == MetricValidateLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, HistogramBucketCount)
		for i := range buckets {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricValidateLatency].buckets[i])
		}
		s.Histograms[MetricValidateLatency] = buckets
	}
	return s
}

// bucket upper bounds: 5ms 10ms 25ms 50ms 100ms 250ms 500ms +Inf
func bucketIndex(d time.Duration) int {
	switch ms := d.Milliseconds(); {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
