package carrier

import (
	"sort"
	"time"

	"github.com/vendora/backend/internal/domain/logistics"
)

const displayTimeLayout = "02 Jan 2006, 03:04 PM"

// Scan timestamps arrive in several layouts depending on panel version
var scanTimeLayouts = []string{
	"2006-01-02T15:04:05.000000",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// normalizeScans flattens both scan shapes into TrackingEvents, substitutes
// empty strings for anything missing, and sorts ascending by scan time.
// Scans without a parseable time sort first; the sort is stable so their
// relative order is preserved.
func normalizeScans(scans []delhiveryScan) []logistics.TrackingEvent {
	events := make([]logistics.TrackingEvent, 0, len(scans))

	for _, scan := range scans {
		status, detail, rawTime := scanFields(scan)

		event := logistics.TrackingEvent{
			Status: status,
			Detail: detail,
		}
		if t, ok := parseScanTime(rawTime); ok {
			event.Time = t
			event.DisplayTime = t.Format(displayTimeLayout)
		}
		events = append(events, event)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time.Before(events[j].Time)
	})

	return events
}

// scanFields reads a scan entry, preferring the nested ScanDetail shape
// when present
func scanFields(scan delhiveryScan) (status, detail, rawTime string) {
	if scan.ScanDetail != nil {
		d := scan.ScanDetail
		return d.Scan, firstNonEmpty(d.Instructions, d.StatusDetails), firstNonEmpty(d.ScanDateTime, d.ScannedDate)
	}
	return scan.Scan, firstNonEmpty(scan.Instructions, scan.StatusDetails), firstNonEmpty(scan.ScanDateTime, scan.ScannedDate)
}

func parseScanTime(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range scanTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
