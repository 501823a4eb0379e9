package services

import (
	"fmt"
	"time"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driven"
	"github.com/vittaya051733-boop/tungtong1/internal/drawdate"
)

// Config is the immutable pipeline configuration built at startup.
type Config struct {
	// Schema fixes categories, expected counts and amount keys.
	Schema domain.Schema

	// Now is the clock. Nil means time.Now.
	Now func() time.Time
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		Schema: domain.DefaultSchema(),
	}
}

func (c Config) now() time.Time {
	if c.Now != nil {
		return c.Now().UTC()
	}
	return time.Now().UTC()
}

// Sources are the upstream adapters. A nil source makes its stage unavailable.
type Sources struct {
	API      driven.ResultsAPI
	Official driven.OfficialDocuments
	Mirror   driven.MirrorDocuments
	Pages    driven.ResultPages
}

// bounds is the default and accepted range of one window option.
type bounds struct {
	def, lo, hi int
}

// Window limits per job.
var (
	daysBounds         = bounds{def: 366, lo: 1, hi: 370}
	apiPagesBounds     = bounds{def: 6, lo: 1, hi: 60}
	apiUpsertsBounds   = bounds{def: 60, lo: 1, hi: 500}
	repairLimitBounds  = bounds{def: 400, lo: 10, hi: 800}
	repairUpsertBounds = bounds{def: 200, lo: 1, hi: 800}
	docLimitBounds     = bounds{def: 200, lo: 10, hi: 500}
	docUpsertBounds    = bounds{def: 20, lo: 1, hi: 200}
	sweepFilesBounds   = bounds{def: 800, lo: 10, hi: 2000}
)

// apply returns the default for zero, clamps positive values into range
// and rejects negative ones.
func (b bounds) apply(name string, v int) (int, error) {
	switch {
	case v < 0:
		return 0, fmt.Errorf("%w: %s must not be negative, got %d", domain.ErrInvalidWindow, name, v)
	case v == 0:
		return b.def, nil
	default:
		return min(max(v, b.lo), b.hi), nil
	}
}

// window is a resolved set of job options.
type window struct {
	days       int
	pages      int
	limit      int
	maxUpserts int
	cutoff     string
}

// resolveWindow validates opts against the job's bounds. A nil bounds
// pointer means the job ignores that option.
func (c Config) resolveWindow(opts domain.JobOptions, pages, limit, upserts *bounds) (window, error) {
	var w window
	var err error

	if opts.Timeout < 0 {
		return w, fmt.Errorf("%w: timeout must not be negative, got %s", domain.ErrInvalidWindow, opts.Timeout)
	}
	if w.days, err = daysBounds.apply("days", opts.Days); err != nil {
		return w, err
	}
	if pages != nil {
		if w.pages, err = pages.apply("pages", opts.Pages); err != nil {
			return w, err
		}
	}
	if limit != nil {
		if w.limit, err = limit.apply("limit", opts.Limit); err != nil {
			return w, err
		}
	}
	if upserts != nil {
		if w.maxUpserts, err = upserts.apply("max upserts", opts.MaxUpserts); err != nil {
			return w, err
		}
	}
	w.cutoff = drawdate.Cutoff(c.now(), w.days)
	return w, nil
}
