package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	listingserrors "liora/internal/listings/errors"
	"liora/pkg/config"
	mongotx "liora/pkg/db/mongo"
	"liora/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Listings"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *model.Listing) error
	FindByID(ctx context.Context, id string) (*model.Listing, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Listing, error)
	FindByHost(ctx context.Context, hostID string) ([]*model.Listing, error)
	Search(ctx context.Context, filter model.ListingFilter) ([]*model.Listing, error)
	Count(ctx context.Context, filter model.ListingFilter) (int64, error)
	Update(ctx context.Context, listing *model.Listing) error
	Delete(ctx context.Context, id string) error
}

type mongoListingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoListingRepository(cfg *config.Config) ListingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoListingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

type listingDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	HostID      string             `bson:"host_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Location    string             `bson:"location"`
	Price       float64            `bson:"price"`
	Type        string             `bson:"type"`
	Bedrooms    int                `bson:"bedrooms"`
	Bathrooms   int                `bson:"bathrooms"`
	MaxGuests   int                `bson:"max_guests"`
	Images      []string           `bson:"images"`
	Amenities   []string           `bson:"amenities"`
	Coordinates *model.Coordinates `bson:"coordinates,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func toDocument(l *model.Listing) *listingDocument {
	return &listingDocument{
		HostID:      l.HostID,
		Title:       l.Title,
		Description: l.Description,
		Location:    l.Location,
		Price:       l.Price,
		Type:        l.Type,
		Bedrooms:    l.Bedrooms,
		Bathrooms:   l.Bathrooms,
		MaxGuests:   l.MaxGuests,
		Images:      nonNil(l.Images),
		Amenities:   nonNil(l.Amenities),
		Coordinates: l.Coordinates,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func (d *listingDocument) toModel() *model.Listing {
	return &model.Listing{
		ID:          d.ID.Hex(),
		HostID:      d.HostID,
		Title:       d.Title,
		Description: d.Description,
		Location:    d.Location,
		Price:       d.Price,
		Type:        d.Type,
		Bedrooms:    d.Bedrooms,
		Bathrooms:   d.Bathrooms,
		MaxGuests:   d.MaxGuests,
		Images:      nonNil(d.Images),
		Amenities:   nonNil(d.Amenities),
		Coordinates: d.Coordinates,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (r *mongoListingRepository) Create(ctx context.Context, listing *model.Listing) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	listing.CreatedAt = now
	listing.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, toDocument(listing))
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}

	listing.ID = mongotx.InsertedHex(result)
	return nil
}

func (r *mongoListingRepository) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", listingserrors.ErrInvalidID, id)
	}

	var doc listingDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, listingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find listing: %w", err)
	}

	return doc.toModel(), nil
}

func (r *mongoListingRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Listing, error) {
	if len(ids) == 0 {
		return []*model.Listing{}, nil
	}

	objectIDs, err := mongotx.ObjectIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", listingserrors.ErrInvalidID, err)
	}

	return r.find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}}, options.Find())
}

func (r *mongoListingRepository) FindByHost(ctx context.Context, hostID string) ([]*model.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{"host_id": hostID}, opts)
}

func (r *mongoListingRepository) Search(ctx context.Context, filter model.ListingFilter) ([]*model.Listing, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(filter.Skip()).
		SetLimit(int64(filter.Limit))

	return r.find(ctx, BuildSearchFilter(filter), opts)
}

func (r *mongoListingRepository) Count(ctx context.Context, filter model.ListingFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, BuildSearchFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return count, nil
}

func (r *mongoListingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Listing, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find listings: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []listingDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}

	listings := make([]*model.Listing, 0, len(docs))
	for i := range docs {
		listings = append(listings, docs[i].toModel())
	}
	return listings, nil
}

func (r *mongoListingRepository) Update(ctx context.Context, listing *model.Listing) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(listing.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", listingserrors.ErrInvalidID, listing.ID)
	}

	listing.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	doc := toDocument(listing)

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": objectID}, doc)
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}
	if result.MatchedCount == 0 {
		return listingserrors.ErrNotFound
	}
	return nil
}

func (r *mongoListingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", listingserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	if result.DeletedCount == 0 {
		return listingserrors.ErrNotFound
	}
	return nil
}

// BuildSearchFilter translates the public listing filters into a Mongo query.
// Location is a case-insensitive substring match with regex metacharacters escaped.
func BuildSearchFilter(f model.ListingFilter) bson.M {
	filter := bson.M{}

	if f.Location != "" {
		filter["location"] = bson.M{"$regex": regexp.QuoteMeta(f.Location), "$options": "i"}
	}

	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.Bedrooms != nil {
		filter["bedrooms"] = bson.M{"$gte": *f.Bedrooms}
	}
	if f.Bathrooms != nil {
		filter["bathrooms"] = bson.M{"$gte": *f.Bathrooms}
	}
	if f.MaxGuests != nil {
		filter["max_guests"] = bson.M{"$gte": *f.MaxGuests}
	}

	return filter
}
