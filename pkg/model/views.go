package model

// Read models assembled from batch lookups in place of reference population.

type ListingSummary struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Location string   `json:"location"`
	Price    float64  `json:"price"`
	Type     string   `json:"type"`
	Images   []string `json:"images"`
}

type UserSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

type BookingView struct {
	*Booking
	Listing *ListingSummary `json:"listing,omitempty"`
	Guest   *UserSummary    `json:"guest,omitempty"`
}

type ReviewView struct {
	*Review
	Author *UserSummary `json:"author,omitempty"`
}
