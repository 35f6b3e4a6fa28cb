// Package metrics exposes Prometheus counters for record scanning.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Failure reasons used as the "reason" label of ScanFailures.
const (
	ReasonProtocolViolation = "protocol_violation"
	ReasonRecordTooLarge    = "record_too_large"
	ReasonIncomplete        = "incomplete"
	ReasonProvider          = "provider"
)

// Scan holds the counters updated by a record scanner and its byte source.
// A nil *Scan is valid and records nothing.
type Scan struct {
	Records      prometheus.Counter
	RecordBytes  prometheus.Counter
	ClockRecords prometheus.Counter
	EvalRecords  prometheus.Counter
	Refills      prometheus.Counter
	RefillBytes  prometheus.Counter
	Failures     *prometheus.CounterVec
}

// NewScan creates the scan counters and registers them with reg.
// A nil reg creates unregistered counters.
func NewScan(reg prometheus.Registerer) *Scan {
	return &Scan{
		Records: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "pgnscan_records_total",
			Help: "Total number of records terminated by a result token.",
		}),
		RecordBytes: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "pgnscan_record_bytes_total",
			Help: "Total number of bytes in completed records.",
		}),
		ClockRecords: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "pgnscan_records_with_clocks_total",
			Help: "Total number of completed records flagged as having clock annotations.",
		}),
		EvalRecords: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "pgnscan_records_with_evals_total",
			Help: "Total number of completed records flagged as having evaluation annotations.",
		}),
		Refills: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "pgnscan_source_refills_total",
			Help: "Total number of reads issued to the byte provider that returned data.",
		}),
		RefillBytes: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "pgnscan_source_read_bytes_total",
			Help: "Total number of bytes returned by the byte provider.",
		}),
		Failures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "pgnscan_scan_failures_total",
			Help: "Total number of scans aborted by an error, by reason.",
		}, []string{"reason"}),
	}
}

// ObserveRecord counts one completed record.
func (m *Scan) ObserveRecord(size int, hasClocks, hasEvals bool) {
	if m == nil {
		return
	}
	m.Records.Inc()
	m.RecordBytes.Add(float64(size))
	if hasClocks {
		m.ClockRecords.Inc()
	}
	if hasEvals {
		m.EvalRecords.Inc()
	}
}

// ObserveRefill counts one provider read of n bytes.
func (m *Scan) ObserveRefill(n int) {
	if m == nil {
		return
	}
	m.Refills.Inc()
	m.RefillBytes.Add(float64(n))
}

// ObserveFailure counts one aborted scan.
func (m *Scan) ObserveFailure(reason string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(reason).Inc()
}

// WriteTextfile writes every metric gathered by g to path in the
// Prometheus text exposition format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
