// pkg/alerts/model.go
package alerts

import (
	"fmt"
	"sort"
	"time"
)

// Message priorities as defined from XenServer 6.2.0 onward.
const (
	PriorityDataLoss        = 1 // take action now or data may be permanently lost
	PriorityServiceLoss     = 2 // take action now or some service may fail
	PriorityServiceDegraded = 3 // take action now or some service may suffer
	PriorityServiceRecovery = 4 // something just improved
	PriorityInformational   = 5 // day-to-day events such as VM start or shutdown
)

// SevereThreshold is the lowest priority still reported as an alert.
const SevereThreshold = PriorityServiceDegraded

// TimestampLayout is the compact ISO 8601 form XenAPI uses on the wire.
const TimestampLayout = "20060102T15:04:05Z"

// Alert is one pool message record. The reference is kept only for ordering.
type Alert struct {
	Ref       string
	Priority  int
	Name      string
	Body      string
	Timestamp time.Time
}

// PriorityName returns the documented label of a priority.
func PriorityName(p int) string {
	switch p {
	case PriorityDataLoss:
		return "Data-loss imminent"
	case PriorityServiceLoss:
		return "Service-loss imminent"
	case PriorityServiceDegraded:
		return "Service degraded"
	case PriorityServiceRecovery:
		return "Service recovered"
	case PriorityInformational:
		return "Informational"
	default:
		return "Unknown"
	}
}

// DetailLine renders the alert as a plugin detail line.
func (a Alert) DetailLine() string {
	return fmt.Sprintf("%s Priority: %d , name: %s body: %s",
		a.Timestamp.UTC().Format(TimestampLayout), a.Priority, a.Name, a.Body)
}

// Filter returns the alerts with priority at or below threshold, in input order.
func Filter(records []Alert, threshold int) []Alert {
	var out []Alert
	for _, a := range records {
		if a.Priority <= threshold {
			out = append(out, a)
		}
	}
	return out
}

// FromRecords flattens a ref-keyed record map into a slice ordered by
// timestamp, then reference. The remote map carries no order of its own.
func FromRecords(records map[string]Alert) []Alert {
	out := make([]Alert, 0, len(records))
	for ref, a := range records {
		if a.Ref == "" {
			a.Ref = ref
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].Ref < out[j].Ref
	})
	return out
}
