package model

import "time"

// Tour is a listing published by a guide.  GuideID is fixed at creation
// and CoverPhoto is only ever set from an upload.
type Tour struct {
	ID          string    `json:"id"`
	GuideID     string    `json:"guideId"`
	Guide       *Contact  `json:"guide,omitempty"`
	Title       string    `json:"title"`
	Location    string    `json:"location"`
	Price       Money     `json:"price"`
	Duration    string    `json:"duration"`
	Description string    `json:"description"`
	Category    string    `json:"category,omitempty"`
	Spots       []string  `json:"spots"`
	CoverPhoto  string    `json:"coverPhoto,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TourPatch carries the mutable tour fields.  Nil means "leave as is".
type TourPatch struct {
	Title       *string
	Location    *string
	Price       *Money
	Duration    *string
	Description *string
	Category    *string
	Spots       []string
}

// Apply copies the non-nil fields onto t.
func (p TourPatch) Apply(t *Tour) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Location != nil {
		t.Location = *p.Location
	}
	if p.Price != nil {
		t.Price = *p.Price
	}
	if p.Duration != nil {
		t.Duration = *p.Duration
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Spots != nil {
		t.Spots = p.Spots
	}
}
