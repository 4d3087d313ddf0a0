package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "liora/internal/bookings/errors"
	"liora/pkg/config"
	mongotx "liora/pkg/db/mongo"
	"liora/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByGuest(ctx context.Context, guestID string) ([]*model.Booking, error)
	FindByHost(ctx context.Context, hostID string) ([]*model.Booking, error)
	FindByPaymentIntent(ctx context.Context, intentID string) (*model.Booking, error)
	// FindOverlapping returns active bookings on listingID whose stay intersects [checkIn, checkOut).
	FindOverlapping(ctx context.Context, listingID string, checkIn, checkOut time.Time) ([]*model.Booking, error)
	// UpdateStatus moves a booking from one status to another. ErrStatusChanged means it was not in from.
	UpdateStatus(ctx context.Context, id, from, to string) (*model.Booking, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManagerFor(cfg.Client.Mongo, cfg.MongoUseTransactions),
	}
}

type bookingDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	ListingID       string             `bson:"listing_id"`
	GuestID         string             `bson:"guest_id"`
	HostID          string             `bson:"host_id"`
	CheckIn         time.Time          `bson:"check_in"`
	CheckOut        time.Time          `bson:"check_out"`
	Nights          int                `bson:"nights"`
	TotalPrice      float64            `bson:"total_price"`
	Currency        string             `bson:"currency"`
	Status          string             `bson:"status"`
	PaymentIntentID string             `bson:"payment_intent_id,omitempty"`
	CreatedAt       time.Time          `bson:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at"`
}

func toDocument(b *model.Booking) *bookingDocument {
	return &bookingDocument{
		ListingID:       b.ListingID,
		GuestID:         b.GuestID,
		HostID:          b.HostID,
		CheckIn:         b.CheckIn,
		CheckOut:        b.CheckOut,
		Nights:          b.Nights,
		TotalPrice:      b.TotalPrice,
		Currency:        b.Currency,
		Status:          b.Status,
		PaymentIntentID: b.PaymentIntentID,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func (d *bookingDocument) toModel() *model.Booking {
	return &model.Booking{
		ID:              d.ID.Hex(),
		ListingID:       d.ListingID,
		GuestID:         d.GuestID,
		HostID:          d.HostID,
		CheckIn:         d.CheckIn.UTC(),
		CheckOut:        d.CheckOut.UTC(),
		Nights:          d.Nights,
		TotalPrice:      d.TotalPrice,
		Currency:        d.Currency,
		Status:          d.Status,
		PaymentIntentID: d.PaymentIntentID,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, toDocument(booking))
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	booking.ID = mongotx.InsertedHex(result)
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *mongoBookingRepository) FindByPaymentIntent(ctx context.Context, intentID string) (*model.Booking, error) {
	return r.findOne(ctx, bson.M{"payment_intent_id": intentID})
}

func (r *mongoBookingRepository) findOne(ctx context.Context, filter bson.M) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var doc bookingDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return doc.toModel(), nil
}

func (r *mongoBookingRepository) FindByGuest(ctx context.Context, guestID string) ([]*model.Booking, error) {
	return r.find(ctx, bson.M{"guest_id": guestID}, newestFirst())
}

func (r *mongoBookingRepository) FindByHost(ctx context.Context, hostID string) ([]*model.Booking, error) {
	return r.find(ctx, bson.M{"host_id": hostID}, newestFirst())
}

func (r *mongoBookingRepository) FindOverlapping(ctx context.Context, listingID string, checkIn, checkOut time.Time) ([]*model.Booking, error) {
	return r.find(ctx, overlapFilter(listingID, checkIn, checkOut), options.Find())
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
}

// overlapFilter matches active bookings with check_in < checkOut and check_out > checkIn.
// Touching ranges do not match.
func overlapFilter(listingID string, checkIn, checkOut time.Time) bson.M {
	return bson.M{
		"listing_id": listingID,
		"status":     bson.M{"$in": model.ActiveBookingStatuses},
		"check_in":   bson.M{"$lt": checkOut},
		"check_out":  bson.M{"$gt": checkIn},
	}
}

func (r *mongoBookingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []bookingDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	bookings := make([]*model.Booking, 0, len(docs))
	for i := range docs {
		bookings = append(bookings, docs[i].toModel())
	}
	return bookings, nil
}

func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id, from, to string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"status":     to,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc bookingDocument
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID, "status": from}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrStatusChanged
		}
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	return doc.toModel(), nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
