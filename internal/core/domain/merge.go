package domain

import (
	"slices"
	"time"
)

// Merge folds an extraction into a record under the non-regression rule and
// reports whether the record changed. The existing record is not modified.
//
//   - a prize list is replaced only by a non-empty list at least as long
//   - amounts are replaced only by a full set, and only when the current set is not full
//   - the document is replaced only by one of equal or higher provenance
//   - the source tag only moves up
//
// Diagnostics are always recomputed.
func (s Schema) Merge(existing *DrawRecord, date string, in *Extraction, now time.Time) (*DrawRecord, bool) {
	out := existing.Clone()
	if out == nil {
		out = &DrawRecord{Date: date}
	}
	if out.Prizes == nil {
		out.Prizes = Prizes{}
	}
	changed := existing == nil

	if in != nil {
		for _, cs := range s.Categories {
			next := UniqueTruncate(in.Prizes[cs.Category], cs.Expected)
			cur := out.Prizes[cs.Category]
			if len(next) == 0 || len(next) < len(cur) || slices.Equal(next, cur) {
				continue
			}
			out.Prizes[cs.Category] = next
			changed = true
		}

		if s.AmountsFull(in.Amounts) && !s.AmountsFull(out.Amounts) {
			out.Amounts = in.Amounts.Clone()
			changed = true
		}

		if in.Document != nil {
			cur := out.Document
			if cur == nil || (in.Document.Kind.Rank() >= cur.Kind.Rank() && *in.Document != *cur) {
				doc := *in.Document
				out.Document = &doc
				changed = true
			}
		}

		if in.Source.Rank() > out.Source.Rank() {
			out.Source = in.Source
			changed = true
		}
	}

	diag := s.Evaluate(out.Prizes, out.Amounts)
	if diag.Complete != out.Diagnostics.Complete || !slices.Equal(diag.Warnings, out.Diagnostics.Warnings) {
		changed = true
	}
	out.Diagnostics = diag

	if changed {
		out.UpdatedAt = now
	}
	return out, changed
}

// AsExtraction views a record as an extraction, so a reconciled record can be
// merged into whatever a concurrent writer stored in the meantime.
func (r *DrawRecord) AsExtraction() *Extraction {
	if r == nil {
		return nil
	}
	return &Extraction{
		Source:   r.Source,
		Prizes:   r.Prizes,
		Amounts:  r.Amounts,
		Document: r.Document,
	}
}

// UniqueTruncate removes duplicates keeping first occurrence order and
// truncates to limit. Empty strings are dropped.
func UniqueTruncate(items []string, limit int) []string {
	if limit <= 0 || len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, min(len(items), limit))
	for _, item := range items {
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}
	return out
}
