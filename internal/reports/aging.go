package reports

import (
	"fmt"
	"sort"
	"time"

	"github.com/clearbooks-io/clearbooks/internal/documents"
)

// AgingRow buckets one entity's outstanding balances by days overdue.
// Buckets[0] is current (not yet due); the last bucket is open-ended.
type AgingRow struct {
	EntityID   int64   `json:"entity_id"`
	EntityName string  `json:"entity_name"`
	Buckets    []int64 `json:"buckets"`
	Total      int64   `json:"total"`
}

// Aging is the receivables or payables aging report as of a date.
type Aging struct {
	AsOf   time.Time  `json:"as_of"`
	Labels []string   `json:"labels"`
	Rows   []AgingRow `json:"rows"`
	Totals []int64    `json:"totals"`
	Total  int64      `json:"total"`
}

// Default bucket layout when the caller does not configure one.
const (
	defaultAgingPeriods = 3
	defaultAgingDays    = 30
)

// agingLabels builds the column headers: Current, N fixed-width
// overdue ranges, and an open-ended tail.
func agingLabels(periods, daysPerPeriod int) []string {
	labels := []string{"Current"}
	for i := 0; i < periods; i++ {
		labels = append(labels, fmt.Sprintf("%d-%d Days", i*daysPerPeriod+1, (i+1)*daysPerPeriod))
	}
	labels = append(labels, fmt.Sprintf("Over %d Days", periods*daysPerPeriod))
	return labels
}

// bucketFor maps days overdue to a bucket index. Zero or negative
// means the document is not yet due.
func bucketFor(daysOverdue, periods, daysPerPeriod int) int {
	if daysOverdue <= 0 {
		return 0
	}
	i := 1 + (daysOverdue-1)/daysPerPeriod
	if i > periods+1 {
		i = periods + 1
	}
	return i
}

// BuildAging distributes outstanding document balances into overdue
// buckets per entity. Only the unpaid remainder of each document
// counts.
func BuildAging(asOf time.Time, docs []documents.Document, periods, daysPerPeriod int) Aging {
	if periods <= 0 {
		periods = defaultAgingPeriods
	}
	if daysPerPeriod <= 0 {
		daysPerPeriod = defaultAgingDays
	}
	labels := agingLabels(periods, daysPerPeriod)
	ag := Aging{
		AsOf:   asOf,
		Labels: labels,
		Totals: make([]int64, len(labels)),
	}

	byEntity := make(map[int64]*AgingRow)
	for _, d := range docs {
		if d.AmountDue <= 0 {
			continue
		}
		row, ok := byEntity[d.EntityID]
		if !ok {
			row = &AgingRow{
				EntityID:   d.EntityID,
				EntityName: d.EntityName,
				Buckets:    make([]int64, len(labels)),
			}
			byEntity[d.EntityID] = row
		}
		overdue := int(asOf.Sub(d.DueDate).Hours() / 24)
		i := bucketFor(overdue, periods, daysPerPeriod)
		row.Buckets[i] += d.AmountDue
		row.Total += d.AmountDue
		ag.Totals[i] += d.AmountDue
		ag.Total += d.AmountDue
	}

	for _, row := range byEntity {
		ag.Rows = append(ag.Rows, *row)
	}
	sort.Slice(ag.Rows, func(i, j int) bool { return ag.Rows[i].EntityID < ag.Rows[j].EntityID })
	return ag
}
