package insight

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Additional-Code/tillpos/internal/analytics"
)

// NoData is returned when the trend window holds no sales.
const NoData = "No sufficient data to generate insights."

var hundred = decimal.NewFromInt(100)

// Generate turns a report into a one-line trend and best-seller summary.
func Generate(r analytics.Report) string {
	n := len(r.DailySales)
	if n == 0 {
		return NoData
	}

	today := r.DailySales[n-1].Total
	yesterday := decimal.Zero
	if n > 1 {
		yesterday = r.DailySales[n-2].Total
	}

	var trend string
	switch {
	case yesterday.IsZero():
		trend = "Great start to the sales tracking!"
	case today.GreaterThan(yesterday):
		trend = fmt.Sprintf("Sales are booming! You are up by %s%% compared to yesterday.", percentOf(today.Sub(yesterday), yesterday))
	default:
		trend = fmt.Sprintf("Sales have dipped slightly by %s%%. Consider running a 'Happy Hour' promo.", percentOf(yesterday.Sub(today), yesterday))
	}

	hero := "None"
	if len(r.TopItems) > 0 {
		hero = r.TopItems[0].Name
	}

	return fmt.Sprintf("%s Your superstar product is '%s'. Make sure you have enough stock!", trend, hero)
}

// percentOf formats part/whole as a percentage with one decimal place.
func percentOf(part, whole decimal.Decimal) string {
	return part.Div(whole).Mul(hundred).StringFixed(1)
}
