// Package drawdate normalises draw dates to the canonical YYYY-MM-DD form.
//
// Sources write dates with slashes, unpadded fields and Buddhist-era years
// (Gregorian + 543). Everything downstream keys records by the output of
// Normalize.
package drawdate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
)

// EraOffset is the difference between Buddhist-era and Gregorian years.
const EraOffset = 543

// eraThreshold marks years that are Buddhist-era. No Gregorian draw date
// comes near it.
const eraThreshold = 2400

// Layout is the canonical date layout.
const Layout = "2006-01-02"

var datePattern = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})$`)

// Normalize converts s to YYYY-MM-DD. It fails with domain.ErrInvalidDate
// when s does not match or names a day that does not exist.
func Normalize(s string) (string, error) {
	t, err := Parse(s)
	if err != nil {
		return "", err
	}
	return t.Format(Layout), nil
}

// Parse converts s to a UTC midnight time using the rules of Normalize.
func Parse(s string) (time.Time, error) {
	m := datePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidDate, s)
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	if y >= eraThreshold {
		y -= EraOffset
	}
	if mo < 1 || mo > 12 || d < 1 {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidDate, s)
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	// time.Date rolls 2024-02-30 over into March.
	if t.Day() != d {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidDate, s)
	}
	return t, nil
}

// MustNormalize is Normalize for constants in tests and defaults.
func MustNormalize(s string) string {
	out, err := Normalize(s)
	if err != nil {
		panic(err)
	}
	return out
}

// Format returns t's calendar date in the canonical layout.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// BuddhistYear returns the Buddhist-era year for a Gregorian year.
func BuddhistYear(gregorian int) int {
	return gregorian + EraOffset
}

// Parts splits a canonical date into year, month and day.
func Parts(date string) (year, month, day int, err error) {
	t, err := Parse(date)
	if err != nil {
		return 0, 0, 0, err
	}
	return t.Year(), int(t.Month()), t.Day(), nil
}

// Cutoff returns the oldest date inside a window of days ending at now.
func Cutoff(now time.Time, days int) string {
	return Format(now.AddDate(0, 0, -days))
}

// FromThai builds a canonical date from a Thai day, month index and year.
// The year may be Buddhist-era or Gregorian.
func FromThai(day, month, year int) (string, error) {
	return Normalize(fmt.Sprintf("%04d-%d-%d", year, month, day))
}
