package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Astemirdum/booking-service/booking/internal/errs"
	"github.com/Astemirdum/booking-service/booking/internal/model"
)

// Config keeps the rates out of the code so a rate change is an env
// change, not a release.
type Config struct {
	TaxRate        decimal.Decimal `yaml:"taxRate" envconfig:"PRICING_TAX_RATE" default:"0.12"`
	ServiceFeeRate decimal.Decimal `yaml:"serviceFeeRate" envconfig:"PRICING_SERVICE_FEE_RATE" default:"0.05"`
	PromoDiscount  decimal.Decimal `yaml:"promoDiscount" envconfig:"PRICING_PROMO_DISCOUNT" default:"0.15"`
	PromoCodes     []string        `yaml:"promoCodes" envconfig:"PRICING_PROMO_CODES" default:"WELCOME15"`
}

type Calculator interface {
	Quote(nightlyRate decimal.Decimal, nights int, lines []model.ServiceLine, promoCode string) (model.PriceBreakdown, error)
}

type calculator struct {
	cfg    Config
	promos map[string]struct{}
}

func NewCalculator(cfg Config) *calculator {
	promos := make(map[string]struct{}, len(cfg.PromoCodes))
	for _, code := range cfg.PromoCodes {
		promos[code] = struct{}{}
	}
	return &calculator{cfg: cfg, promos: promos}
}

// Quote is pure: no I/O, deterministic for the same inputs.
//
// The promo discount applies to the room subtotal only, never to
// service lines. Taxes and the service fee are both taken from the
// discounted room subtotal plus the services subtotal. Intermediate
// amounts stay exact; only the grand total is rounded, half-up, to
// the smallest currency unit. Line subtotals are written back into
// lines as the price snapshot to persist.
func (c *calculator) Quote(nightlyRate decimal.Decimal, nights int, lines []model.ServiceLine, promoCode string) (model.PriceBreakdown, error) {
	if nights <= 0 {
		return model.PriceBreakdown{}, errs.ErrInvalidDuration
	}

	roomSubtotal := nightlyRate.Mul(decimal.NewFromInt(int64(nights)))

	discount := decimal.Zero
	if promoCode != "" {
		if _, ok := c.promos[promoCode]; !ok {
			return model.PriceBreakdown{}, errs.ErrInvalidPromoCode
		}
		discount = roomSubtotal.Mul(c.cfg.PromoDiscount)
	}

	servicesSubtotal := decimal.Zero
	for i := range lines {
		lines[i].Subtotal = lines[i].UnitPrice.Mul(decimal.NewFromInt(int64(lines[i].Quantity)))
		servicesSubtotal = servicesSubtotal.Add(lines[i].Subtotal)
	}

	base := roomSubtotal.Sub(discount).Add(servicesSubtotal)
	taxes := base.Mul(c.cfg.TaxRate)
	serviceFee := base.Mul(c.cfg.ServiceFeeRate)

	return model.PriceBreakdown{
		Nights:           nights,
		RoomSubtotal:     roomSubtotal,
		Discount:         discount,
		ServicesSubtotal: servicesSubtotal,
		Taxes:            taxes,
		ServiceFee:       serviceFee,
		Total:            base.Add(taxes).Add(serviceFee).Round(2),
	}, nil
}
