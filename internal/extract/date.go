package extract

import (
	"regexp"
	"strconv"

	"github.com/vittaya051733-boop/tungtong1/internal/drawdate"
	"github.com/vittaya051733-boop/tungtong1/internal/normalisers/text"
)

var thaiMonths = map[string]int{
	"มกราคม":     1,
	"กุมภาพันธ์": 2,
	"มีนาคม":     3,
	"เมษายน":     4,
	"พฤษภาคม":    5,
	"มิถุนายน":   6,
	"กรกฎาคม":    7,
	"สิงหาคม":    8,
	"กันยายน":    9,
	"ตุลาคม":     10,
	"พฤศจิกายน":  11,
	"ธันวาคม":    12,
}

var thaiDrawDate = regexp.MustCompile(`(?:งวดวันที่|ประจำงวดวันที่|ประกาศผลวันที่)\s*([0-3]?\d)\s*(มกราคม|กุมภาพันธ์|มีนาคม|เมษายน|พฤษภาคม|มิถุนายน|กรกฎาคม|สิงหาคม|กันยายน|ตุลาคม|พฤศจิกายน|ธันวาคม)\s*(\d{4})`)

// DrawDate finds the draw date printed in a sheet header, such as
// "งวดวันที่ 16 มิถุนายน 2567", and returns it in canonical form.
func DrawDate(raw string) (string, bool) {
	m := thaiDrawDate.FindStringSubmatch(text.Normalise(raw))
	if m == nil {
		return "", false
	}
	day, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[3])
	date, err := drawdate.FromThai(day, thaiMonths[m[2]], year)
	if err != nil {
		return "", false
	}
	return date, true
}
