package marketdata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// orNA returns the gjson string value, or "n/a" when the path was absent.
func orNA(v gjson.Result) string {
	s := strings.TrimSpace(v.String())
	if !v.Exists() || s == "" {
		return "n/a"
	}
	return s
}

// orAbbrev renders a raw magnitude field like "3440000000000" as "$3.44T",
// falling back to orNA when the value is absent or not numeric.
func orAbbrev(v gjson.Result) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
	if err != nil {
		return orNA(v)
	}
	return abbrevNumber(f)
}

// abbrevNumber renders large magnitudes the way an analyst writes them:
// 1234567890 -> "$1.23B". Negative values keep their sign.
func abbrevNumber(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	switch {
	case v >= 1e12:
		return fmt.Sprintf("%s$%.2fT", sign, v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("%s$%.2fB", sign, v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%s$%.2fM", sign, v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%s$%.2fK", sign, v/1e3)
	default:
		return fmt.Sprintf("%s$%.2f", sign, v)
	}
}

// pct renders a 0.0625-style ratio as "+6.25%".
func pct(v float64) string {
	return fmt.Sprintf("%+.2f%%", v*100)
}

// changePct renders the relative change between two prices.
func changePct(from, to float64) string {
	if from == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", (to-from)/from*100)
}
