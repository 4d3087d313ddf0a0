package model

import "time"

const (
	ListingTypeApartment = "apartment"
	ListingTypeHouse     = "house"
	ListingTypeVilla     = "villa"
	ListingTypeHotel     = "hotel"
)

type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" bson:"lng" validate:"gte=-180,lte=180"`
}

type Listing struct {
	ID          string       `json:"id,omitempty" bson:"_id,omitempty"`
	HostID      string       `json:"host_id" bson:"host_id"`
	Title       string       `json:"title" bson:"title"`
	Description string       `json:"description" bson:"description"`
	Location    string       `json:"location" bson:"location"`
	Price       float64      `json:"price" bson:"price"`
	Type        string       `json:"type" bson:"type"`
	Bedrooms    int          `json:"bedrooms" bson:"bedrooms"`
	Bathrooms   int          `json:"bathrooms" bson:"bathrooms"`
	MaxGuests   int          `json:"max_guests" bson:"max_guests"`
	Images      []string     `json:"images" bson:"images"`
	Amenities   []string     `json:"amenities" bson:"amenities"`
	Coordinates *Coordinates `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
	CreatedAt   time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" bson:"updated_at"`
}

func (l *Listing) Summary() *ListingSummary {
	return &ListingSummary{
		ID:       l.ID,
		Title:    l.Title,
		Location: l.Location,
		Price:    l.Price,
		Type:     l.Type,
		Images:   l.Images,
	}
}

type ListingInput struct {
	Title       string       `json:"title" validate:"required,min=3,max=100"`
	Description string       `json:"description" validate:"required,max=5000"`
	Location    string       `json:"location" validate:"required,max=200"`
	Price       float64      `json:"price" validate:"required,gt=0,lte=1000000"`
	Type        string       `json:"type,omitempty" validate:"omitempty,oneof=apartment house villa hotel"`
	Bedrooms    int          `json:"bedrooms" validate:"gte=0,lte=100"`
	Bathrooms   int          `json:"bathrooms" validate:"gte=0,lte=100"`
	MaxGuests   int          `json:"max_guests" validate:"required,gte=1,lte=500"`
	Images      []string     `json:"images,omitempty" validate:"omitempty,max=30,dive,max=2048"`
	Amenities   []string     `json:"amenities,omitempty" validate:"omitempty,max=100,dive,max=60"`
	Coordinates *Coordinates `json:"coordinates,omitempty" validate:"omitempty"`
}

type ListingUpdate struct {
	Title       *string      `json:"title,omitempty" validate:"omitempty,min=3,max=100"`
	Description *string      `json:"description,omitempty" validate:"omitempty,max=5000"`
	Location    *string      `json:"location,omitempty" validate:"omitempty,max=200"`
	Price       *float64     `json:"price,omitempty" validate:"omitempty,gt=0,lte=1000000"`
	Type        *string      `json:"type,omitempty" validate:"omitempty,oneof=apartment house villa hotel"`
	Bedrooms    *int         `json:"bedrooms,omitempty" validate:"omitempty,gte=0,lte=100"`
	Bathrooms   *int         `json:"bathrooms,omitempty" validate:"omitempty,gte=0,lte=100"`
	MaxGuests   *int         `json:"max_guests,omitempty" validate:"omitempty,gte=1,lte=500"`
	Images      []string     `json:"images,omitempty" validate:"omitempty,max=30,dive,max=2048"`
	Amenities   []string     `json:"amenities,omitempty" validate:"omitempty,max=100,dive,max=60"`
	Coordinates *Coordinates `json:"coordinates,omitempty" validate:"omitempty"`
}

type ListingFilter struct {
	Location  string
	MinPrice  *float64
	MaxPrice  *float64
	Type      string
	Bedrooms  *int
	Bathrooms *int
	MaxGuests *int
	Page      int
	Limit     int
}

func (f ListingFilter) Skip() int64 {
	if f.Page < 1 {
		return 0
	}
	return int64(f.Page-1) * int64(f.Limit)
}

type ListingPage struct {
	Listings []*Listing `json:"listings"`
	Page     int        `json:"page"`
	Pages    int        `json:"pages"`
	Total    int64      `json:"total"`
}

func NewListingPage(listings []*Listing, page, limit int, total int64) *ListingPage {
	if listings == nil {
		listings = []*Listing{}
	}
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &ListingPage{
		Listings: listings,
		Page:     page,
		Pages:    pages,
		Total:    total,
	}
}
