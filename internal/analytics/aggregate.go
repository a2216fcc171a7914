// Package analytics derives sales reports from settled orders.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Additional-Code/tillpos/internal/entity"
)

const (
	// DateKeyLayout formats the daily trend keys.
	DateKeyLayout = "2006-01-02"
	// WindowDays is the length of the daily trend, today included.
	WindowDays = 7
	// TopItemsLimit caps the best-seller list.
	TopItemsLimit = 5
)

// DailySales is the revenue for one calendar day.
type DailySales struct {
	Date  string
	Total decimal.Decimal
	Count int
}

// TopItem is a best-selling item across all orders.
type TopItem struct {
	Name  string
	Qty   int
	Sales decimal.Decimal
}

// PaymentStat is the order count and revenue for one payment method.
// Method is empty for orders recorded without one.
type PaymentStat struct {
	Method string
	Count  int
	Amount decimal.Decimal
}

// Report bundles the three derivations.
type Report struct {
	DailySales   []DailySales
	TopItems     []TopItem
	PaymentStats []PaymentStat
}

// Aggregate builds a Report from orders as of now. Days are calendar days in
// loc. Orders are expected newest first; best-sellers with equal quantity
// keep the order in which they were first seen.
func Aggregate(orders []entity.Order, now time.Time, loc *time.Location) Report {
	if loc == nil {
		loc = time.UTC
	}
	return Report{
		DailySales:   dailySales(orders, now, loc),
		TopItems:     topItems(orders),
		PaymentStats: paymentStats(orders),
	}
}

// Window returns the half-open range covered by the daily trend.
func Window(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	y, m, d := local.Date()
	start := time.Date(y, m, d-(WindowDays-1), 0, 0, 0, 0, loc)
	end := time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	return start, end
}

func dailySales(orders []entity.Order, now time.Time, loc *time.Location) []DailySales {
	start, end := Window(now, loc)

	byDay := make(map[string]*DailySales)
	for _, o := range orders {
		if o.SettledAt.Before(start) || !o.SettledAt.Before(end) {
			continue
		}
		key := o.SettledAt.In(loc).Format(DateKeyLayout)
		day, ok := byDay[key]
		if !ok {
			day = &DailySales{Date: key, Total: decimal.Zero}
			byDay[key] = day
		}
		day.Total = day.Total.Add(o.GrandTotal)
		day.Count++
	}

	out := make([]DailySales, 0, len(byDay))
	for _, day := range byDay {
		out = append(out, *day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func topItems(orders []entity.Order) []TopItem {
	index := make(map[string]int)
	var items []TopItem
	for _, o := range orders {
		for _, it := range o.Items {
			i, ok := index[it.Name]
			if !ok {
				i = len(items)
				index[it.Name] = i
				items = append(items, TopItem{Name: it.Name, Sales: decimal.Zero})
			}
			items[i].Qty += it.Qty
			items[i].Sales = items[i].Sales.Add(it.LineTotal())
		}
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Qty > items[j].Qty })
	if len(items) > TopItemsLimit {
		items = items[:TopItemsLimit]
	}
	return items
}

func paymentStats(orders []entity.Order) []PaymentStat {
	byMethod := make(map[string]*PaymentStat)
	for _, o := range orders {
		method := string(o.PaymentMethod)
		stat, ok := byMethod[method]
		if !ok {
			stat = &PaymentStat{Method: method, Amount: decimal.Zero}
			byMethod[method] = stat
		}
		stat.Count++
		stat.Amount = stat.Amount.Add(o.GrandTotal)
	}

	out := make([]PaymentStat, 0, len(byMethod))
	for _, stat := range byMethod {
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Method < out[j].Method })
	return out
}
