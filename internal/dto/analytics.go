package dto

import (
	"github.com/shopspring/decimal"

	"github.com/Additional-Code/tillpos/internal/analytics"
)

// OtherPaymentMethod labels orders stored without a payment method.
const OtherPaymentMethod = "Other"

type DailySalesResponse struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type TopItemResponse struct {
	Name  string          `json:"name"`
	Qty   int             `json:"qty"`
	Sales decimal.Decimal `json:"sales"`
}

type PaymentStatResponse struct {
	Method string          `json:"method"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// AnalyticsResponse is the dashboard payload.
type AnalyticsResponse struct {
	DailySales   []DailySalesResponse  `json:"dailySales"`
	TopItems     []TopItemResponse     `json:"topItems"`
	PaymentStats []PaymentStatResponse `json:"paymentStats"`
	Insight      string                `json:"insight"`
}

// NewAnalyticsResponse maps a report and its insight. Slices are never nil so
// clients always receive arrays.
func NewAnalyticsResponse(r analytics.Report, insight string) AnalyticsResponse {
	resp := AnalyticsResponse{
		DailySales:   make([]DailySalesResponse, 0, len(r.DailySales)),
		TopItems:     make([]TopItemResponse, 0, len(r.TopItems)),
		PaymentStats: make([]PaymentStatResponse, 0, len(r.PaymentStats)),
		Insight:      insight,
	}
	for _, d := range r.DailySales {
		resp.DailySales = append(resp.DailySales, DailySalesResponse{Date: d.Date, Total: d.Total, Count: d.Count})
	}
	for _, it := range r.TopItems {
		resp.TopItems = append(resp.TopItems, TopItemResponse{Name: it.Name, Qty: it.Qty, Sales: it.Sales})
	}
	for _, p := range r.PaymentStats {
		method := p.Method
		if method == "" {
			method = OtherPaymentMethod
		}
		resp.PaymentStats = append(resp.PaymentStats, PaymentStatResponse{Method: method, Count: p.Count, Amount: p.Amount})
	}
	return resp
}
