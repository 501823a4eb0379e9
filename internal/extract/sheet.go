package extract

import (
	"regexp"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
	"github.com/vittaya051733-boop/tungtong1/internal/normalisers/text"
)

// Heading locates one category on a sheet.
type Heading struct {
	Category domain.Category
	Pattern  *regexp.Regexp

	// Terminators bound the scan to the category's own section.
	// Empty means scan to the end of the text.
	Terminators []*regexp.Regexp
}

// Thai sheet headings. OCR drops diacritics, so tier headings accept
// shortened forms of ที่.
var (
	headingFirst  = regexp.MustCompile(`รางวัล\s*ที่\s*1`)
	headingNear1  = regexp.MustCompile(`รางวัลข้างเคียง\s*รางวัล\s*ที่\s*1`)
	headingLast2  = regexp.MustCompile(`เลขท้าย\s*2\s*ตัว`)
	headingLast3F = regexp.MustCompile(`เลขหน้า\s*3\s*ตัว`)
	headingLast3B = regexp.MustCompile(`เลขท้าย\s*3\s*ตัว`)
	headingTier2  = regexp.MustCompile(`รางวัล\s*(?:ที่|ที|ท)\s*2`)
	headingTier3  = regexp.MustCompile(`รางวัล\s*(?:ที่|ที|ท)\s*3`)
	headingTier4  = regexp.MustCompile(`รางวัล\s*(?:ที่|ที|ท)\s*4`)
	headingTier5  = regexp.MustCompile(`รางวัล\s*(?:ที่|ที|ท)\s*5`)

	plausibleHeading = regexp.MustCompile(`รางวัลที่\s*1|เลขหน้า\s*3\s*ตัว|เลขท้าย\s*2\s*ตัว`)
	sixDigits        = regexp.MustCompile(`\d{6}`)
)

// DefaultHeadings returns the heading table for Thai government lottery sheets.
func DefaultHeadings() []Heading {
	return []Heading{
		{Category: domain.CategoryFirst, Pattern: headingFirst},
		{Category: domain.CategoryLast2, Pattern: headingLast2},
		{Category: domain.CategoryLast3F, Pattern: headingLast3F},
		{Category: domain.CategoryLast3B, Pattern: headingLast3B},
		{
			Category: domain.CategoryNear1,
			Pattern:  headingNear1,
			Terminators: []*regexp.Regexp{
				headingTier2, headingTier3, headingLast3F, headingLast3B, headingLast2,
			},
		},
		{Category: domain.CategoryTier2, Pattern: headingTier2},
		{Category: domain.CategoryTier3, Pattern: headingTier3},
		{Category: domain.CategoryTier4, Pattern: headingTier4},
		{Category: domain.CategoryTier5, Pattern: headingTier5},
	}
}

// Parser turns sheet text into prize lists.
type Parser struct {
	schema   domain.Schema
	headings []Heading
}

// NewParser creates a parser for schema using the default headings.
func NewParser(schema domain.Schema) *Parser {
	return NewParserWithHeadings(schema, DefaultHeadings())
}

// NewParserWithHeadings creates a parser with a custom heading table.
func NewParserWithHeadings(schema domain.Schema, headings []Heading) *Parser {
	return &Parser{schema: schema, headings: headings}
}

// Parse extracts every category it can find. The text is normalised first.
// Categories the schema does not define are ignored.
func (p *Parser) Parse(raw string) domain.Prizes {
	normalized := text.Normalise(raw)
	out := domain.Prizes{}
	for _, h := range p.headings {
		cs, ok := p.schema.Spec(h.Category)
		if !ok {
			continue
		}
		var nums []string
		if len(h.Terminators) > 0 {
			nums = InSection(normalized, h.Pattern, h.Terminators, cs.Width, cs.Expected)
		} else {
			nums = AfterHeading(normalized, h.Pattern, cs.Width, cs.Expected)
		}
		if len(nums) > 0 {
			out[h.Category] = nums
		}
	}
	return out
}

// ParseBest parses each text and keeps the highest scoring result.
// Empty texts are skipped.
func (p *Parser) ParseBest(texts ...string) domain.Prizes {
	var best domain.Prizes
	bestScore := -1.0
	for _, t := range texts {
		if t == "" {
			continue
		}
		prizes := p.Parse(t)
		if score := p.schema.Score(prizes); score > bestScore {
			best, bestScore = prizes, score
		}
	}
	return best
}

// Plausible reports whether text looks like a result sheet: it needs a
// six digit run and one of the main category headings. Scanned sheets
// often yield a header line and nothing else.
func Plausible(raw string) bool {
	t := text.Normalise(raw)
	return sixDigits.MatchString(t) && plausibleHeading.MatchString(t)
}
