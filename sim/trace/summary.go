package trace

import "strings"

// Summary aggregates statistics from an EventLog.
type Summary struct {
	TotalEvents   int
	KindCounts    map[Kind]int
	PicksByWorker map[string]int
	Products      []string // held sets of delivered products, in delivery order
}

// Summarize computes aggregate statistics from an EventLog.
// Safe for nil or empty logs (returns zero-value fields).
func Summarize(l *EventLog) *Summary {
	summary := &Summary{
		KindCounts:    make(map[Kind]int),
		PicksByWorker: make(map[string]int),
	}
	if l == nil {
		return summary
	}

	summary.TotalEvents = len(l.Records)
	for _, r := range l.Records {
		summary.KindCounts[r.Kind]++
		switch r.Kind {
		case KindPick:
			summary.PicksByWorker[r.WorkerID]++
		case KindDelivered:
			summary.Products = append(summary.Products, strings.Join(r.Held, "+"))
		}
	}
	return summary
}
