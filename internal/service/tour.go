package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/tour-guide-marketplace/internal/apperr"
	"github.com/iliyamo/tour-guide-marketplace/internal/authz"
	"github.com/iliyamo/tour-guide-marketplace/internal/model"
	"github.com/iliyamo/tour-guide-marketplace/internal/repository"
)

const tourNotOwned = "tour not found or unauthorized"

// TourService manages the guides' tour catalogue.
type TourService struct {
	tours TourRepository
	media MediaUploader
}

func NewTourService(tours TourRepository, media MediaUploader) *TourService {
	return &TourService{tours: tours, media: media}
}

// TourInput carries the fields of a new tour.
type TourInput struct {
	Title       string
	Location    string
	Price       model.Money
	Duration    string
	Description string
	Category    string
	Spots       []string
}

// Create publishes a tour owned by the calling guide.  An attached file
// becomes the cover photo.
func (s *TourService) Create(ctx context.Context, caller authz.Caller, in TourInput, cover *Upload) (*model.Tour, error) {
	if err := authz.Authorize(caller, authz.CreateTour); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Location) == "" {
		return nil, apperr.Validation("title and location are required")
	}
	if !in.Price.IsPositive() {
		return nil, apperr.Validation("price must be greater than zero")
	}
	if err := checkMoney("price", in.Price, model.MaxAmount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	t := &model.Tour{
		ID:          uuid.NewString(),
		GuideID:     caller.UserID,
		Title:       strings.TrimSpace(in.Title),
		Location:    strings.TrimSpace(in.Location),
		Price:       in.Price,
		Duration:    in.Duration,
		Description: in.Description,
		Category:    in.Category,
		Spots:       in.Spots,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.Spots == nil {
		t.Spots = []string{}
	}
	if cover != nil {
		url, err := s.media.Upload(ctx, cover.Filename, cover.Body)
		if err != nil {
			return nil, err
		}
		t.CoverPhoto = url
	}

	if err := s.tours.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// List returns the public catalogue, optionally by category.
func (s *TourService) List(ctx context.Context, category string) ([]model.Tour, error) {
	return s.tours.List(ctx, strings.TrimSpace(category))
}

// Get returns one tour with its guide's contact.
func (s *TourService) Get(ctx context.Context, id string) (*model.Tour, error) {
	t, err := s.tours.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "tour not found")
	}
	return &t, nil
}

// Mine lists the calling guide's tours.
func (s *TourService) Mine(ctx context.Context, caller authz.Caller) ([]model.Tour, error) {
	if err := authz.Authorize(caller, authz.ListOwnTours); err != nil {
		return nil, err
	}
	return s.tours.ListByGuide(ctx, caller.UserID)
}

// Update applies p to a tour the caller owns.  A tour owned by someone
// else is reported as missing.
func (s *TourService) Update(ctx context.Context, caller authz.Caller, id string, p model.TourPatch) (*model.Tour, error) {
	t, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if p.Price != nil {
		if !p.Price.IsPositive() {
			return nil, apperr.Validation("price must be greater than zero")
		}
		if err := checkMoney("price", *p.Price, model.MaxAmount); err != nil {
			return nil, err
		}
	}
	p.Apply(t)
	t.UpdatedAt = time.Now().UTC()

	if err := s.tours.Update(ctx, t); err != nil {
		return nil, notFoundAs(err, tourNotOwned)
	}
	return t, nil
}

// Delete removes a tour the caller owns.
func (s *TourService) Delete(ctx context.Context, caller authz.Caller, id string) error {
	if _, err := s.owned(ctx, caller, id); err != nil {
		return err
	}
	if err := s.tours.Delete(ctx, id, caller.UserID); err != nil {
		return notFoundAs(err, tourNotOwned)
	}
	return nil
}

func (s *TourService) owned(ctx context.Context, caller authz.Caller, id string) (*model.Tour, error) {
	if err := authz.Authorize(caller, authz.ManageTour); err != nil {
		return nil, err
	}
	t, err := s.tours.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && t.GuideID != caller.UserID) {
		return nil, apperr.NotFound(tourNotOwned)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
