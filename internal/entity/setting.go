package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// ShopSettingID is the primary key of the single settings row.
const ShopSettingID int64 = 1

// ShopSetting holds receipt and presentation metadata for the shop.
// TaxRate is stored for display only; totals never apply it.
type ShopSetting struct {
	bun.BaseModel `bun:"table:shop_settings,alias:ss"`

	ID            int64           `bun:",pk" json:"-"`
	ShopName      string          `bun:"shop_name,notnull" json:"shop_name"`
	Address       string          `bun:"address,notnull" json:"address"`
	Phone         string          `bun:"phone,notnull" json:"phone"`
	Email         string          `bun:"email,notnull" json:"email"`
	Currency      string          `bun:"currency,notnull" json:"currency"`
	TaxRate       decimal.Decimal `bun:"tax_rate,type:decimal(5,2),notnull" json:"tax_rate"`
	FooterMessage string          `bun:"footer_message,notnull" json:"footer_message"`
	UpdatedAt     time.Time       `bun:"updated_at,notnull" json:"updated_at"`
}

// DefaultShopSetting is the configuration created on first read.
func DefaultShopSetting(now time.Time) ShopSetting {
	return ShopSetting{
		ID:            ShopSettingID,
		ShopName:      "My POS Shop",
		Address:       "No 123, City, Country",
		Phone:         "011-0000000",
		Email:         "contact@shop.com",
		Currency:      "Rs.",
		TaxRate:       decimal.Zero,
		FooterMessage: "Thank you come again!",
		UpdatedAt:     now,
	}
}
