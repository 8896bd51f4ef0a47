package fingerprint

import (
	"regexp"
	"strconv"
)

var percentRe = regexp.MustCompile(`(\d{1,3})%`)

// HotScore extracts the largest discount percentage mentioned in the
// text, scaled to 0-100. Text without a percentage scores 0.
func HotScore(text string) float64 {
	best := 0
	for _, m := range percentRe.FindAllStringSubmatch(text, -1) {
		if pct, err := strconv.Atoi(m[1]); err == nil && pct <= 100 && pct > best {
			best = pct
		}
	}
	return float64(best)
}
