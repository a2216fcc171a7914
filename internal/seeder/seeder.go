package seeder

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/tillpos/internal/config"
	"github.com/Additional-Code/tillpos/internal/entity"
	"github.com/Additional-Code/tillpos/internal/pricing"
	loyaltyrepo "github.com/Additional-Code/tillpos/internal/repository/loyalty"
	orderrepo "github.com/Additional-Code/tillpos/internal/repository/order"
	settingrepo "github.com/Additional-Code/tillpos/internal/repository/setting"
)

// Module provides the Seeder to Fx.
var Module = fx.Provide(New)

// Seeder fills an empty database with demo data for local/dev setups.
type Seeder struct {
	orders   *orderrepo.Repository
	members  *loyaltyrepo.Repository
	settings *settingrepo.Repository
	pricer   *pricing.Engine
	loc      *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// New constructs a Seeder.
func New(orders *orderrepo.Repository, members *loyaltyrepo.Repository, settings *settingrepo.Repository, cfg config.Config, logger *zap.Logger) *Seeder {
	loc := cfg.Sales.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Seeder{
		orders:   orders,
		members:  members,
		settings: settings,
		pricer:   pricing.NewEngine(nil),
		loc:      loc,
		logger:   logger,
		now:      time.Now,
	}
}

type menuItem struct {
	name  string
	price string
}

var menu = []menuItem{
	{"Chicken Kottu", "1200"},
	{"Egg Hoppers", "150"},
	{"Fish Bun", "120"},
	{"Milk Tea", "100"},
	{"Lamprais", "1500"},
	{"Watalappan", "350"},
}

var demoMembers = []entity.LoyaltyMember{
	{Name: "Nimal Perera", Phone: "0771234567", Email: "nimal@example.com"},
	{Name: "Kumari Silva", Phone: "0712345678", Email: "kumari@example.com"},
	{Name: "Ruwan Fernando", Phone: "0759876543"},
}

// Run seeds settings, members and orders.
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.Settings(ctx); err != nil {
		return err
	}
	members, err := s.Members(ctx)
	if err != nil {
		return err
	}
	return s.Orders(ctx, members)
}

// Settings inserts the default shop configuration if none exists.
func (s *Seeder) Settings(ctx context.Context) error {
	defaults := entity.DefaultShopSetting(s.now().UTC())
	created, err := s.settings.Insert(ctx, &defaults)
	if err != nil {
		return err
	}
	if created {
		s.logger.Info("seeded shop settings")
	}
	return nil
}

// Members registers the demo members, reusing any already on file.
func (s *Seeder) Members(ctx context.Context) ([]entity.LoyaltyMember, error) {
	out := make([]entity.LoyaltyMember, 0, len(demoMembers))
	created := 0
	for i, sample := range demoMembers {
		member := sample
		member.JoinedAt = s.now().UTC().AddDate(0, 0, -30+i)

		err := s.members.Create(ctx, &member)
		if errors.Is(err, loyaltyrepo.ErrDuplicatePhone) {
			existing, findErr := s.members.FindByPhone(ctx, member.Phone)
			if findErr != nil {
				return nil, findErr
			}
			out = append(out, *existing)
			continue
		}
		if err != nil {
			return nil, err
		}
		created++
		out = append(out, member)
	}

	s.logger.Info("seeded loyalty members", zap.Int("count", created))
	return out, nil
}

// Orders records a week of demo sales. It does nothing when orders exist.
func (s *Seeder) Orders(ctx context.Context, members []entity.LoyaltyMember) error {
	existing, err := s.orders.List(ctx, orderrepo.Range{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		s.logger.Info("orders already present; skipping", zap.Int("count", len(existing)))
		return nil
	}

	today := s.now().In(s.loc)
	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, s.loc)

	count := 0
	for day := 6; day >= 0; day-- {
		perDay := 2 + day%3
		for n := 0; n < perDay; n++ {
			seq := day*7 + n
			at := midnight.AddDate(0, 0, -day).Add(time.Duration(9+n*3) * time.Hour)
			if at.After(today) {
				continue
			}

			var member *entity.LoyaltyMember
			if len(members) > 0 && seq%2 == 0 {
				member = &members[seq%len(members)]
			}

			order := s.demoOrder(seq, at, member)
			if err := s.orders.Create(ctx, order); err != nil {
				return err
			}
			count++
		}
	}

	s.logger.Info("seeded orders", zap.Int("count", count))
	return nil
}

func (s *Seeder) demoOrder(seq int, at time.Time, member *entity.LoyaltyMember) *entity.Order {
	lines := 1 + seq%3
	items := make([]entity.OrderItem, 0, lines)
	for i := 0; i < lines; i++ {
		m := menu[(seq+i*2)%len(menu)]
		items = append(items, entity.OrderItem{
			Name:      m.name,
			UnitPrice: decimal.RequireFromString(m.price),
			Qty:       1 + (seq+i)%2,
		})
	}

	b := s.pricer.Loyalty(pricing.SubTotal(items), member != nil)
	order := &entity.Order{
		SubTotal:        b.SubTotal,
		LoyaltyDiscount: b.LoyaltyDiscount,
		ManagerPercent:  b.ManagerPercent,
		ManagerDiscount: b.ManagerDiscount,
		Discount:        b.Discount(),
		GrandTotal:      b.GrandTotal(),
		PaymentMethod:   entity.PaymentCard,
		Staff:           "Demo Cashier",
		SettledAt:       at.UTC(),
		Items:           items,
	}
	if seq%3 != 0 {
		// round up to the next hundred, as a customer handing over notes would
		tendered := b.GrandTotal().Div(decimal.NewFromInt(100)).Ceil().Mul(decimal.NewFromInt(100))
		order.PaymentMethod = entity.PaymentCash
		order.Tendered = decimal.NewNullDecimal(tendered)
		order.ChangeDue = decimal.NewNullDecimal(tendered.Sub(b.GrandTotal()))
	}
	if member != nil {
		id := member.ID
		order.CustomerID = &id
	}
	return order
}
