package domain

import "math"

// CategorySpec fixes the shape of one prize category.
type CategorySpec struct {
	Category Category

	// Expected is the number of winning numbers drawn.
	Expected int

	// Width is the digit count of each number.
	Width int
}

// Schema fixes the prize categories and amount keys of a lottery.
// It is built once at startup and never mutated.
type Schema struct {
	Categories []CategorySpec
	AmountKeys []AmountKey
}

// DefaultSchema returns the Thai government lottery schema.
func DefaultSchema() Schema {
	return Schema{
		Categories: []CategorySpec{
			{Category: CategoryFirst, Expected: 1, Width: 6},
			{Category: CategoryLast2, Expected: 1, Width: 2},
			{Category: CategoryLast3F, Expected: 2, Width: 3},
			{Category: CategoryLast3B, Expected: 2, Width: 3},
			{Category: CategoryNear1, Expected: 2, Width: 6},
			{Category: CategoryTier2, Expected: 5, Width: 6},
			{Category: CategoryTier3, Expected: 10, Width: 6},
			{Category: CategoryTier4, Expected: 50, Width: 6},
			{Category: CategoryTier5, Expected: 100, Width: 6},
		},
		AmountKeys: []AmountKey{
			AmountFirst, AmountNear1, AmountSecond, AmountThird, AmountFourth,
			AmountFifth, AmountLast3, AmountLast3F, AmountLast2,
		},
	}
}

// Spec returns the expected shape of a category.
func (s Schema) Spec(c Category) (CategorySpec, bool) {
	for _, cs := range s.Categories {
		if cs.Category == c {
			return cs, true
		}
	}
	return CategorySpec{}, false
}

// PrizesFull reports whether every category holds exactly its expected count.
func (s Schema) PrizesFull(p Prizes) bool {
	for _, cs := range s.Categories {
		if len(p[cs.Category]) != cs.Expected {
			return false
		}
	}
	return true
}

// AmountsFull reports whether every amount key is present.
func (s Schema) AmountsFull(a Amounts) bool {
	for _, k := range s.AmountKeys {
		if _, ok := a[k]; !ok {
			return false
		}
	}
	return true
}

// Halted reports whether a date needs no further processing.
// Full prizes alone is not enough; amounts come from a different source.
func (s Schema) Halted(r *DrawRecord) bool {
	return r != nil && s.PrizesFull(r.Prizes) && s.AmountsFull(r.Amounts)
}

// Evaluate computes diagnostics for a prize and amount snapshot.
func (s Schema) Evaluate(p Prizes, a Amounts) Diagnostics {
	var warnings []string
	for _, cs := range s.Categories {
		if len(p[cs.Category]) != cs.Expected {
			warnings = append(warnings, "missing_"+string(cs.Category))
		}
	}
	amountsFull := s.AmountsFull(a)
	if !amountsFull {
		warnings = append(warnings, "missing_amounts")
	}
	return Diagnostics{
		Complete: len(warnings) == 0,
		Warnings: warnings,
	}
}

// BuildAmounts turns optional tier values into Amounts.
// It returns nil unless every schema key resolves to a finite number.
func (s Schema) BuildAmounts(values map[AmountKey]*float64) Amounts {
	out := make(Amounts, len(s.AmountKeys))
	for _, k := range s.AmountKeys {
		v, ok := values[k]
		if !ok || v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			return nil
		}
		out[k] = int64(math.Round(*v))
	}
	return out
}

// Score rates how complete a prize set is. Used to pick between two
// parses of the same document.
func (s Schema) Score(p Prizes) float64 {
	score := 0.0
	full := func(c Category) bool {
		cs, ok := s.Spec(c)
		return ok && len(p[c]) == cs.Expected
	}
	if full(CategoryFirst) {
		score += 3
	}
	if full(CategoryLast2) {
		score += 2
	}
	for _, c := range []Category{CategoryLast3F, CategoryLast3B, CategoryNear1} {
		if full(c) {
			score += 2
		}
	}
	score += float64(len(p[CategoryTier2])) * 0.2
	score += float64(len(p[CategoryTier3])) * 0.1
	score += float64(len(p[CategoryTier4])) * 0.02
	score += float64(len(p[CategoryTier5])) * 0.01
	return score
}
