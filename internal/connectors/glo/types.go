package glo

import (
	"math"
	"strconv"
	"strings"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
)

type envelope[T any] struct {
	Response *T `json:"response"`
}

type resultResponse struct {
	Date       string      `json:"date"`
	PDFURL     string      `json:"pdf_url"`
	YoutubeURL string      `json:"youtube_url,omitempty"`
	Data       *resultData `json:"data"`
}

type prizeBlock struct {
	Price  string `json:"price"`
	Number []struct {
		Value string `json:"value"`
	} `json:"number"`
}

type resultData struct {
	First  *prizeBlock `json:"first"`
	Near1  *prizeBlock `json:"near1"`
	Second *prizeBlock `json:"second"`
	Third  *prizeBlock `json:"third"`
	Fourth *prizeBlock `json:"fourth"`
	Fifth  *prizeBlock `json:"fifth"`
	Last2  *prizeBlock `json:"last2"`
	Last3F *prizeBlock `json:"last3f"`
	Last3B *prizeBlock `json:"last3b"`
}

type pageResponse struct {
	Total   int `json:"total"`
	Lottery []struct {
		Date string    `json:"date"`
		Data *pageData `json:"data"`
	} `json:"lottery"`
}

// pageData is the condensed "previous results" shape.
type pageData struct {
	First  []string `json:"first"`
	Last3F []string `json:"last3f"`
	Last3B []string `json:"last3b"`
	Last2  []string `json:"last2"`
}

func (b *prizeBlock) values() []string {
	if b == nil {
		return nil
	}
	out := make([]string, 0, len(b.Number))
	for _, n := range b.Number {
		if v := strings.TrimSpace(n.Value); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (b *prizeBlock) amount() *float64 {
	if b == nil {
		return nil
	}
	return parsePrice(b.Price)
}

// parsePrice reads "6,000,000" style amounts.
func parsePrice(s string) *float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func (d *resultData) prizes() domain.Prizes {
	p := domain.Prizes{}
	set := func(c domain.Category, v []string) {
		if len(v) > 0 {
			p[c] = v
		}
	}
	set(domain.CategoryFirst, d.First.values())
	set(domain.CategoryNear1, d.Near1.values())
	set(domain.CategoryTier2, d.Second.values())
	set(domain.CategoryTier3, d.Third.values())
	set(domain.CategoryTier4, d.Fourth.values())
	set(domain.CategoryTier5, d.Fifth.values())
	set(domain.CategoryLast3F, d.Last3F.values())
	set(domain.CategoryLast3B, d.Last3B.values())
	set(domain.CategoryLast2, d.Last2.values())
	return p
}

func (d *resultData) amounts(schema domain.Schema) domain.Amounts {
	return schema.BuildAmounts(map[domain.AmountKey]*float64{
		domain.AmountFirst:  d.First.amount(),
		domain.AmountNear1:  d.Near1.amount(),
		domain.AmountSecond: d.Second.amount(),
		domain.AmountThird:  d.Third.amount(),
		domain.AmountFourth: d.Fourth.amount(),
		domain.AmountFifth:  d.Fifth.amount(),
		domain.AmountLast3:  d.Last3B.amount(),
		domain.AmountLast3F: d.Last3F.amount(),
		domain.AmountLast2:  d.Last2.amount(),
	})
}

func (d *pageData) prizes() domain.Prizes {
	p := domain.Prizes{}
	if v := trimmed(d.First); len(v) > 0 {
		p[domain.CategoryFirst] = v[:1]
	}
	if v := trimmed(d.Last2); len(v) > 0 {
		p[domain.CategoryLast2] = v[:1]
	}
	if v := domain.UniqueTruncate(trimmed(d.Last3F), 2); len(v) > 0 {
		p[domain.CategoryLast3F] = v
	}
	if v := domain.UniqueTruncate(trimmed(d.Last3B), 2); len(v) > 0 {
		p[domain.CategoryLast3B] = v
	}
	return p
}

func trimmed(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
