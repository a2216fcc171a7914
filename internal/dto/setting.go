package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Additional-Code/tillpos/internal/entity"
)

// SettingRequest replaces the shop configuration.
type SettingRequest struct {
	ShopName      string          `json:"shopName" validate:"required"`
	Address       string          `json:"address"`
	Phone         string          `json:"phone"`
	Email         string          `json:"email" validate:"omitempty,email"`
	Currency      string          `json:"currency" validate:"required"`
	TaxRate       decimal.Decimal `json:"taxRate"`
	FooterMessage string          `json:"footerMessage"`
}

// SettingResponse is the shop configuration shown on receipts.
type SettingResponse struct {
	ShopName      string          `json:"shopName"`
	Address       string          `json:"address"`
	Phone         string          `json:"phone"`
	Email         string          `json:"email"`
	Currency      string          `json:"currency"`
	TaxRate       decimal.Decimal `json:"taxRate"`
	FooterMessage string          `json:"footerMessage"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func NewSettingResponse(s entity.ShopSetting) SettingResponse {
	return SettingResponse{
		ShopName:      s.ShopName,
		Address:       s.Address,
		Phone:         s.Phone,
		Email:         s.Email,
		Currency:      s.Currency,
		TaxRate:       s.TaxRate,
		FooterMessage: s.FooterMessage,
		UpdatedAt:     s.UpdatedAt.UTC(),
	}
}
