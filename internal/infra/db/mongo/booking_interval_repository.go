package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "staydesk/internal/domain/availability"
	domainproperties "staydesk/internal/domain/properties"
	"staydesk/internal/domain/shared/daterange"
)

type BookingIntervalRepository struct {
	col *mongo.Collection
}

func NewBookingIntervalRepository(db *mongo.Database) *BookingIntervalRepository {
	col := db.Collection("booking_intervals")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "range.check_in", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &BookingIntervalRepository{col: col}
}

// ForProperty loads intervals of id overlapping window, whatever their status.
func (r *BookingIntervalRepository) ForProperty(ctx context.Context, id domainproperties.PropertyID, window daterange.DateRange) ([]domainavailability.BookingInterval, error) {
	filter := bson.M{
		"property_id":     string(id),
		"range.check_in":  bson.M{"$lt": window.CheckOut.UnixMilli()},
		"range.check_out": bson.M{"$gt": window.CheckIn.UnixMilli()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "range.check_in", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domainavailability.BookingInterval
	for cur.Next(ctx) {
		var doc bookingIntervalDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toEntity())
	}
	return out, cur.Err()
}

func (r *BookingIntervalRepository) ByID(ctx context.Context, id domainavailability.BookingID) (*domainavailability.BookingInterval, error) {
	var doc bookingIntervalDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainavailability.ErrIntervalNotFound
		}
		return nil, err
	}
	interval := doc.toEntity()
	return &interval, nil
}

func (r *BookingIntervalRepository) Save(ctx context.Context, b *domainavailability.BookingInterval) error {
	doc := bookingIntervalDocument{
		ID:         string(b.BookingID),
		PropertyID: string(b.PropertyID),
		Range:      newRangeDocument(b.Range),
		Status:     string(b.Status),
		UpdatedAt:  b.UpdatedAt.UnixMilli(),
	}
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

type bookingIntervalDocument struct {
	ID         string        `bson:"_id"`
	PropertyID string        `bson:"property_id"`
	Range      rangeDocument `bson:"range"`
	Status     string        `bson:"status"`
	UpdatedAt  int64         `bson:"updated_at"`
}

func (d bookingIntervalDocument) toEntity() domainavailability.BookingInterval {
	return domainavailability.BookingInterval{
		BookingID:  domainavailability.BookingID(d.ID),
		PropertyID: domainproperties.PropertyID(d.PropertyID),
		Range:      d.Range.toRange(),
		Status:     domainavailability.BookingStatus(d.Status),
		UpdatedAt:  timestampToTime(d.UpdatedAt),
	}
}

var _ domainavailability.BookingRepository = (*BookingIntervalRepository)(nil)
