package normalize

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mpapenbr/f1-dashboard-service/pkg/model"
)

// FormatGap renders a time delta in seconds as "+S.mmm"
func FormatGap(seconds float64) string {
	return "+" + decimal.NewFromFloat(seconds).StringFixed(3)
}

// ParseGap maps a gap label to seconds. The leader maps to 0.
// Lapped cars ("+1 LAP") and missing values are not a number (ok == false).
func ParseGap(gap string) (seconds float64, ok bool) {
	gap = strings.TrimSpace(gap)
	switch {
	case gap == model.GapLeader:
		return 0, true
	case gap == "", gap == model.GapNotAvailable, strings.Contains(strings.ToUpper(gap), "LAP"):
		return 0, false
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(gap, "+"))
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// FormatLapTime renders a lap duration as "M:SS.mmm"
func FormatLapTime(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	d := decimal.NewFromFloat(seconds).Round(3)
	sixty := decimal.NewFromInt(60)
	minutes := d.Div(sixty).Floor()
	rest := d.Sub(minutes.Mul(sixty)).StringFixed(3)
	if len(rest) < 6 {
		rest = "0" + rest
	}
	return fmt.Sprintf("%s:%s", minutes.String(), rest)
}
