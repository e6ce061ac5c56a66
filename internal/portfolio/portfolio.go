package portfolio

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// reportZone is the fixed zone the source data is keyed in (UTC+8).
var reportZone = time.FixedZone("UTC+8", 8*60*60)

// DashboardView is the read-path response payload. It is derived per
// request and never persisted to the external store.
type DashboardView struct {
	DailyProfit   float64 `json:"dailyProfit"`
	HoldingProfit float64 `json:"holdingProfit"`
	TotalProfit   float64 `json:"totalProfit"`
	TotalCost     float64 `json:"totalCost"`
	UpdateTime    string  `json:"updateTime"`
}

// DateKey formats a day-granular snapshot identifier, e.g. "@2026-08-24".
func DateKey(t time.Time) string {
	return "@" + t.In(reportZone).Format("2006-01-02")
}

// FormatUpdateTime renders the localized timestamp shown on the dashboard.
func FormatUpdateTime(t time.Time) string {
	return t.In(reportZone).Format("2006-01-02 15:04:05")
}

// round2 rounds half away from zero to two decimals, matching how the
// store-side figures are produced.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// padFundCode keeps the digits of a fund code and zero-pads it to six
// characters, the conventional exchange form.
func padFundCode(s string) string {
	var digits strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return ""
	}
	code := digits.String()
	for len(code) < 6 {
		code = "0" + code
	}
	return code
}
