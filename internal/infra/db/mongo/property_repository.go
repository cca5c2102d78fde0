package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainproperties "staydesk/internal/domain/properties"
)

type PropertyRepository struct {
	col *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	return &PropertyRepository{col: db.Collection("properties")}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperties.PropertyID) (*domainproperties.Property, error) {
	var doc propertyDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainproperties.ErrPropertyNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperties.Property) error {
	doc := newPropertyDocument(p)
	filter := bson.M{"_id": doc.ID, "version": p.Version}
	doc.Version = p.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainproperties.ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domainproperties.ErrConcurrentUpdate
	}
	p.Version = doc.Version
	return nil
}

type pricingDocument struct {
	BaseRate              moneyDocument `bson:"base_rate"`
	WeekendPremiumPercent string        `bson:"weekend_premium_percent"`
	CleaningFee           moneyDocument `bson:"cleaning_fee"`
	ExtraBedRate          moneyDocument `bson:"extra_bed_rate"`
	Capacity              int           `bson:"capacity"`
	MinStayWeekday        int           `bson:"min_stay_weekday"`
	MinStayWeekend        int           `bson:"min_stay_weekend"`
	MinStayPeak           int           `bson:"min_stay_peak"`
}

type propertyDocument struct {
	ID        string          `bson:"_id"`
	Name      string          `bson:"name"`
	Pricing   pricingDocument `bson:"pricing"`
	UpdatedAt int64           `bson:"updated_at"`
	Version   int64           `bson:"version"`
}

func newPropertyDocument(p *domainproperties.Property) propertyDocument {
	return propertyDocument{
		ID:   string(p.ID),
		Name: p.Name,
		Pricing: pricingDocument{
			BaseRate:              newMoneyDocument(p.Pricing.BaseRate),
			WeekendPremiumPercent: p.Pricing.WeekendPremiumPercent.String(),
			CleaningFee:           newMoneyDocument(p.Pricing.CleaningFee),
			ExtraBedRate:          newMoneyDocument(p.Pricing.ExtraBedRate),
			Capacity:              p.Pricing.Capacity,
			MinStayWeekday:        p.Pricing.MinStayWeekday,
			MinStayWeekend:        p.Pricing.MinStayWeekend,
			MinStayPeak:           p.Pricing.MinStayPeak,
		},
		UpdatedAt: p.UpdatedAt.UnixMilli(),
		Version:   p.Version,
	}
}

func (d propertyDocument) toAggregate() (*domainproperties.Property, error) {
	base, err := d.Pricing.BaseRate.toMoney()
	if err != nil {
		return nil, err
	}
	cleaning, err := d.Pricing.CleaningFee.toMoney()
	if err != nil {
		return nil, err
	}
	extraBed, err := d.Pricing.ExtraBedRate.toMoney()
	if err != nil {
		return nil, err
	}
	weekend, err := parseDecimal(d.Pricing.WeekendPremiumPercent)
	if err != nil {
		return nil, err
	}
	return &domainproperties.Property{
		ID:   domainproperties.PropertyID(d.ID),
		Name: d.Name,
		Pricing: domainproperties.PricingProfile{
			BaseRate:              base,
			WeekendPremiumPercent: weekend,
			CleaningFee:           cleaning,
			ExtraBedRate:          extraBed,
			Capacity:              d.Pricing.Capacity,
			MinStayWeekday:        d.Pricing.MinStayWeekday,
			MinStayWeekend:        d.Pricing.MinStayWeekend,
			MinStayPeak:           d.Pricing.MinStayPeak,
		},
		UpdatedAt: timestampToTime(d.UpdatedAt),
		Version:   d.Version,
	}, nil
}

var _ domainproperties.Repository = (*PropertyRepository)(nil)
