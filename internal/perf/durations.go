package perf

import (
	"errors"
	"sort"
	"time"
)

// NetworkSpanName is the span emitted for every outgoing HTTP request.
const NetworkSpanName = "net.http.request"

// SessionDurations splits a run's wall time into time spent waiting on the
// network and everything else.
type SessionDurations struct {
	Total   time.Duration
	Network time.Duration
	Local   time.Duration
}

func GetSessionDurations() (SessionDurations, error) {
	spans, err := GetSpans()
	if err != nil {
		return SessionDurations{}, err
	}
	return sessionDurationsFromSpans(spans)
}

// totalDurationFromCommand takes the longest app.command.* span. The command
// span may be nested under the process lifecycle spans.
func totalDurationFromCommand(spans []SpanSnapshot) (time.Duration, bool) {
	best := time.Duration(0)
	found := false
	for _, span := range spans {
		if !isCommandSpan(span.Name) {
			continue
		}
		if span.EndTime.Before(span.StartTime) || span.StartTime.IsZero() {
			continue
		}
		if duration := span.Duration(); !found || duration > best {
			best = duration
			found = true
		}
	}
	return best, found
}

func isCommandSpan(name string) bool {
	const prefix = "app.command."
	return len(name) > len(prefix) && name[:len(prefix)] == prefix
}

func totalDurationFromSpanBounds(spans []SpanSnapshot) (time.Duration, error) {
	var minStart time.Time
	var maxEnd time.Time

	for _, span := range spans {
		if span.StartTime.IsZero() || span.EndTime.IsZero() || span.EndTime.Before(span.StartTime) {
			continue
		}
		if minStart.IsZero() || span.StartTime.Before(minStart) {
			minStart = span.StartTime
		}
		if maxEnd.IsZero() || maxEnd.Before(span.EndTime) {
			maxEnd = span.EndTime
		}
	}

	if minStart.IsZero() || maxEnd.IsZero() {
		return 0, errors.New("no spans with valid timestamps")
	}
	return maxEnd.Sub(minStart), nil
}

// networkDurationFromSpans sums wall time spent waiting on HTTP, counting
// overlapping requests once.
func networkDurationFromSpans(spans []SpanSnapshot) time.Duration {
	intervals := make([]timeInterval, 0, len(spans))
	for _, span := range spans {
		if span.Name != NetworkSpanName {
			continue
		}
		if span.StartTime.IsZero() || span.EndTime.IsZero() || span.EndTime.Before(span.StartTime) {
			continue
		}
		intervals = append(intervals, timeInterval{Start: span.StartTime, End: span.EndTime})
	}
	return mergeIntervals(intervals)
}

type timeInterval struct {
	Start time.Time
	End   time.Time
}

func mergeIntervals(intervals []timeInterval) time.Duration {
	if len(intervals) == 0 {
		return 0
	}

	sort.Slice(intervals, func(i, j int) bool {
		if !intervals[i].Start.Equal(intervals[j].Start) {
			return intervals[i].Start.Before(intervals[j].Start)
		}
		return intervals[i].End.Before(intervals[j].End)
	})

	currentStart := intervals[0].Start
	currentEnd := intervals[0].End
	total := time.Duration(0)

	for _, interval := range intervals[1:] {
		if interval.Start.After(currentEnd) {
			total += currentEnd.Sub(currentStart)
			currentStart = interval.Start
			currentEnd = interval.End
			continue
		}
		if currentEnd.Before(interval.End) {
			currentEnd = interval.End
		}
	}

	return total + currentEnd.Sub(currentStart)
}

func sessionDurationsFromSpans(spans []SpanSnapshot) (SessionDurations, error) {
	total, ok := totalDurationFromCommand(spans)
	if !ok {
		var err error
		total, err = totalDurationFromSpanBounds(spans)
		if err != nil {
			return SessionDurations{}, err
		}
	}

	network := networkDurationFromSpans(spans)
	local := total - network
	if local < 0 {
		local = 0
	}

	return SessionDurations{
		Total:   total,
		Network: network,
		Local:   local,
	}, nil
}
