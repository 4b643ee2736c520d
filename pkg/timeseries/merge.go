package timeseries

import "sort"

// Merge combines an existing series with newly fetched records. Records are
// keyed by RecordID; when both slices carry the same id the incoming record
// replaces the existing one. The result is a fresh slice sorted by timestamp
// ascending (id as tiebreaker), so merging the same batch twice yields the
// same series.
func Merge[R Record](existing, incoming []R) []R {
	byID := make(map[string]R, len(existing)+len(incoming))
	for _, r := range existing {
		byID[r.RecordID()] = r
	}
	for _, r := range incoming {
		byID[r.RecordID()] = r
	}
	out := make([]R, 0, len(byID))
	for _, r := range byID {
		out = append(out, r)
	}
	Sort(out)
	return out
}

// Sort orders records by timestamp ascending in place, breaking ties on id
// so equal-timestamp records keep a stable order across runs.
func Sort[R Record](records []R) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Unix() != records[j].Unix() {
			return records[i].Unix() < records[j].Unix()
		}
		return records[i].RecordID() < records[j].RecordID()
	})
}

// Window returns the records whose timestamps fall inside [from, to], both
// bounds inclusive. Input order is preserved.
func Window[R Record](records []R, from, to int64) []R {
	out := make([]R, 0, len(records))
	for _, r := range records {
		if ts := r.Unix(); ts >= from && ts <= to {
			out = append(out, r)
		}
	}
	return out
}

// MaxUnix returns the largest record timestamp, or 0 for an empty series.
func MaxUnix[R Record](records []R) int64 {
	var maxTS int64
	for _, r := range records {
		if ts := r.Unix(); ts > maxTS {
			maxTS = ts
		}
	}
	return maxTS
}

// MinUnix returns the smallest record timestamp, or 0 for an empty series.
func MinUnix[R Record](records []R) int64 {
	if len(records) == 0 {
		return 0
	}
	minTS := records[0].Unix()
	for _, r := range records[1:] {
		if ts := r.Unix(); ts < minTS {
			minTS = ts
		}
	}
	return minTS
}
