package reports

import (
	"sort"
	"time"

	"github.com/clearbooks-io/clearbooks/internal/documents"
)

// EntitySummary totals one client's or vendor's documents: what was
// billed, what was collected, and what remains open or overdue.
type EntitySummary struct {
	EntityID   int64  `json:"entity_id"`
	EntityName string `json:"entity_name"`
	Documents  int    `json:"documents"`
	Invoiced   int64  `json:"invoiced"`
	Paid       int64  `json:"paid"`
	Open       int64  `json:"open"`
	Overdue    int64  `json:"overdue"`
}

// BuildEntitySummaries aggregates documents per entity. Drafts and
// voided documents are excluded; a document counts as overdue when
// its due date has passed and a balance remains.
func BuildEntitySummaries(asOf time.Time, docs []documents.Document) []EntitySummary {
	byEntity := make(map[int64]*EntitySummary)
	for _, d := range docs {
		if d.Status == documents.StatusDraft || d.Status == documents.StatusVoid {
			continue
		}
		s, ok := byEntity[d.EntityID]
		if !ok {
			s = &EntitySummary{EntityID: d.EntityID, EntityName: d.EntityName}
			byEntity[d.EntityID] = s
		}
		s.Documents++
		s.Invoiced += d.Total
		s.Paid += d.AmountPaid
		if d.AmountDue > 0 {
			s.Open += d.AmountDue
			if d.DueDate.Before(asOf) {
				s.Overdue += d.AmountDue
			}
		}
	}
	out := make([]EntitySummary, 0, len(byEntity))
	for _, s := range byEntity {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out
}
