package pricing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"staydesk/internal/app/dto"
	"staydesk/internal/app/handlers/support"
	"staydesk/internal/app/policies"
	"staydesk/internal/app/queries"
	"staydesk/internal/app/uow"
	domainpricing "staydesk/internal/domain/pricing"
	domainproperties "staydesk/internal/domain/properties"
	"staydesk/internal/domain/shared/daterange"
)

const QuoteStayKey = "pricing.quote"

type QuoteStayQuery struct {
	PropertyID string `json:"property_id" validate:"required"`
	CheckIn    string `json:"check_in" validate:"required"`
	CheckOut   string `json:"check_out" validate:"required"`
	Guests     int    `json:"guests" validate:"gte=0,lte=64"`
}

func (q QuoteStayQuery) Key() string { return QuoteStayKey }

type QuoteStayHandler struct {
	UoWFactory uow.UoWFactory
	Pricing    policies.PricingPort
	Cache      policies.QuoteCache
	CacheTTL   time.Duration
	// CacheNamespace separates cached quotes priced under different rule tables.
	CacheNamespace string
	Logger         *slog.Logger
}

func (h *QuoteStayHandler) Handle(ctx context.Context, q QuoteStayQuery) (dto.RateQuote, error) {
	if h.Pricing == nil {
		return dto.RateQuote{}, ErrPricingUnavailable
	}
	dr, err := daterange.Parse(q.CheckIn, q.CheckOut)
	if err != nil {
		return dto.RateQuote{}, fmt.Errorf("pricing: %w", err)
	}
	unit, ctx, done, err := support.ReadUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.RateQuote{}, err
	}
	defer done()

	id := domainproperties.PropertyID(q.PropertyID)
	property, err := unit.Properties().ByID(ctx, id)
	if err != nil {
		return dto.RateQuote{}, err
	}
	rates, err := unit.SeasonalRates().ForProperty(ctx, id, dr)
	if err != nil {
		return dto.RateQuote{}, err
	}
	req := domainpricing.StayRequest{PropertyID: id, Range: dr, Guests: q.Guests}

	key := h.cacheKey(property, rates, req)
	if cached, ok := h.lookup(ctx, key); ok {
		return cached, nil
	}

	quote, err := h.Pricing.Quote(ctx, req, property.Pricing, rates)
	if err != nil {
		return dto.RateQuote{}, err
	}
	out := dto.MapRateQuote(q.PropertyID, quote)
	h.store(ctx, key, out)
	return out, nil
}

// cacheKey hashes every input of the quote so any profile, rate or rule change
// produces a different key.
func (h *QuoteStayHandler) cacheKey(property *domainproperties.Property, rates []domainpricing.SeasonalRate, req domainpricing.StayRequest) string {
	if h.Cache == nil {
		return ""
	}
	raw, err := json.Marshal(struct {
		Property domainproperties.PropertyID
		Version  int64
		Profile  domainproperties.PricingProfile
		Rates    []domainpricing.SeasonalRate
		Range    string
		Guests   int
	}{property.ID, property.Version, property.Pricing, rates, req.Range.String(), req.Guests})
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	ns := h.CacheNamespace
	if ns == "" {
		ns = "default"
	}
	return "quote:" + ns + ":" + hex.EncodeToString(sum[:])
}

func (h *QuoteStayHandler) lookup(ctx context.Context, key string) (dto.RateQuote, bool) {
	if key == "" {
		return dto.RateQuote{}, false
	}
	payload, found, err := h.Cache.Get(ctx, key)
	if err != nil {
		h.logger().WarnContext(ctx, "quote cache read failed", "error", err)
		return dto.RateQuote{}, false
	}
	if !found {
		return dto.RateQuote{}, false
	}
	var out dto.RateQuote
	if err := json.Unmarshal(payload, &out); err != nil {
		h.logger().WarnContext(ctx, "quote cache entry unreadable", "key", key, "error", err)
		return dto.RateQuote{}, false
	}
	out.Cached = true
	return out, true
}

func (h *QuoteStayHandler) store(ctx context.Context, key string, quote dto.RateQuote) {
	if key == "" {
		return
	}
	payload, err := json.Marshal(quote)
	if err != nil {
		return
	}
	if err := h.Cache.Set(ctx, key, payload, h.CacheTTL); err != nil {
		h.logger().WarnContext(ctx, "quote cache write failed", "error", err)
	}
}

func (h *QuoteStayHandler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

var _ queries.Handler[QuoteStayQuery, dto.RateQuote] = (*QuoteStayHandler)(nil)
