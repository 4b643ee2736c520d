package timeseries

import "time"

// Metadata describes the stored extent of one synchronized series. All
// timestamps are unix seconds.
type Metadata struct {
	LastUpdateAt   int64 `json:"lastUpdateAt" msgpack:"lastUpdateAt"`
	LastRecordTime int64 `json:"lastRecordTime" msgpack:"lastRecordTime"`
	RangeStart     int64 `json:"rangeStart" msgpack:"rangeStart"`
	RangeEnd       int64 `json:"rangeEnd" msgpack:"rangeEnd"`
	Records        int   `json:"records" msgpack:"records"`
}

// BuildMetadata summarizes a merged series after a successful sync. now is
// recorded as the update time; the range bounds come from the records
// themselves.
func BuildMetadata[R Record](records []R, now time.Time) Metadata {
	return Metadata{
		LastUpdateAt:   now.Unix(),
		LastRecordTime: MaxUnix(records),
		RangeStart:     MinUnix(records),
		RangeEnd:       MaxUnix(records),
		Records:        len(records),
	}
}

// Fresh reports whether the series was updated recently enough to serve
// without hitting the upstream. A nil receiver (no metadata stored yet) is
// never fresh.
func (m *Metadata) Fresh(now time.Time, maxAge time.Duration) bool {
	if m == nil || m.LastUpdateAt == 0 {
		return false
	}
	return now.Sub(time.Unix(m.LastUpdateAt, 0)) < maxAge
}

// ResumeFrom returns the timestamp an incremental sync should fetch from:
// one second past the newest stored record, or start for an empty series.
func (m *Metadata) ResumeFrom(start int64) int64 {
	if m == nil || m.LastRecordTime == 0 {
		return start
	}
	if next := m.LastRecordTime + 1; next > start {
		return next
	}
	return start
}
