package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainpricing "staydesk/internal/domain/pricing"
	domainproperties "staydesk/internal/domain/properties"
	"staydesk/internal/domain/shared/daterange"
)

type SeasonalRateRepository struct {
	col *mongo.Collection
}

func NewSeasonalRateRepository(db *mongo.Database) *SeasonalRateRepository {
	col := db.Collection("seasonal_rates")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "start_date", Value: 1}, {Key: "end_date", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &SeasonalRateRepository{col: col}
}

// ForProperty loads rates whose inclusive window touches the half-open window.
func (r *SeasonalRateRepository) ForProperty(ctx context.Context, id domainproperties.PropertyID, window daterange.DateRange) ([]domainpricing.SeasonalRate, error) {
	filter := bson.M{
		"property_id": string(id),
		"start_date":  bson.M{"$lt": window.CheckOut.UnixMilli()},
		"end_date":    bson.M{"$gte": window.CheckIn.UnixMilli()},
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domainpricing.SeasonalRate
	for cur.Next(ctx) {
		var doc seasonalRateDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		rate, err := doc.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, rate)
	}
	return out, cur.Err()
}

func (r *SeasonalRateRepository) Save(ctx context.Context, rate domainpricing.SeasonalRate) error {
	doc := newSeasonalRateDocument(rate)
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

type seasonalRateDocument struct {
	ID             int64  `bson:"_id"`
	PropertyID     string `bson:"property_id"`
	Name           string `bson:"name"`
	StartDate      int64  `bson:"start_date"`
	EndDate        int64  `bson:"end_date"`
	RateType       string `bson:"rate_type"`
	RateValue      string `bson:"rate_value"`
	MinStayNights  int    `bson:"min_stay_nights"`
	WeekendsOnly   bool   `bson:"weekends_only"`
	ApplicableDays []int  `bson:"applicable_days,omitempty"`
	Active         bool   `bson:"active"`
	Priority       int    `bson:"priority"`
}

func newSeasonalRateDocument(r domainpricing.SeasonalRate) seasonalRateDocument {
	days := make([]int, 0, len(r.ApplicableDays))
	for _, d := range r.ApplicableDays {
		days = append(days, int(d))
	}
	return seasonalRateDocument{
		ID:             int64(r.ID),
		PropertyID:     string(r.PropertyID),
		Name:           r.Name,
		StartDate:      daterange.Day(r.StartDate).UnixMilli(),
		EndDate:        daterange.Day(r.EndDate).UnixMilli(),
		RateType:       string(r.Type),
		RateValue:      r.Value.String(),
		MinStayNights:  r.MinStayNights,
		WeekendsOnly:   r.WeekendsOnly,
		ApplicableDays: days,
		Active:         r.Active,
		Priority:       r.Priority,
	}
}

func (d seasonalRateDocument) toEntity() (domainpricing.SeasonalRate, error) {
	value, err := parseDecimal(d.RateValue)
	if err != nil {
		return domainpricing.SeasonalRate{}, err
	}
	var days []time.Weekday
	for _, wd := range d.ApplicableDays {
		days = append(days, time.Weekday(wd))
	}
	return domainpricing.SeasonalRate{
		ID:             domainpricing.SeasonalRateID(d.ID),
		PropertyID:     domainproperties.PropertyID(d.PropertyID),
		Name:           d.Name,
		StartDate:      timestampToTime(d.StartDate),
		EndDate:        timestampToTime(d.EndDate),
		Type:           domainpricing.RateType(d.RateType),
		Value:          value,
		MinStayNights:  d.MinStayNights,
		WeekendsOnly:   d.WeekendsOnly,
		ApplicableDays: days,
		Active:         d.Active,
		Priority:       d.Priority,
	}, nil
}

var _ domainpricing.SeasonalRateRepository = (*SeasonalRateRepository)(nil)
