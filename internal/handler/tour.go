package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-guide-marketplace/internal/model"
	"github.com/iliyamo/tour-guide-marketplace/internal/service"
)

// TourHandler serves the tour catalogue.
type TourHandler struct {
	tours *service.TourService
}

func NewTourHandler(tours *service.TourService) *TourHandler {
	return &TourHandler{tours: tours}
}

type createTourReq struct {
	Title       string      `json:"title" validate:"required"`
	Location    string      `json:"location" validate:"required"`
	Price       model.Money `json:"price"`
	Duration    string      `json:"duration"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Spots       []string    `json:"spots"`
}

// updateTourReq has no cover photo field: covers are only set by upload.
type updateTourReq struct {
	Title       *string      `json:"title"`
	Location    *string      `json:"location"`
	Price       *model.Money `json:"price"`
	Duration    *string      `json:"duration"`
	Description *string      `json:"description"`
	Category    *string      `json:"category"`
	Spots       []string     `json:"spots"`
}

// Create publishes a tour; an optional "file" becomes the cover photo.
func (h *TourHandler) Create(c echo.Context) error {
	var req createTourReq
	cover, done, err := bindForm(c, &req)
	if err != nil {
		return err
	}
	defer done()
	ctx, cancel, caller := scope(c)
	defer cancel()

	t, err := h.tours.Create(ctx, caller, service.TourInput{
		Title:       req.Title,
		Location:    req.Location,
		Price:       req.Price,
		Duration:    req.Duration,
		Description: req.Description,
		Category:    req.Category,
		Spots:       req.Spots,
	}, cover)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Tour created successfully", t)
}

// List returns all tours, filtered by ?category= (or the older ?tourType=).
func (h *TourHandler) List(c echo.Context) error {
	category := c.QueryParam("category")
	if category == "" {
		category = c.QueryParam("tourType")
	}
	ctx, cancel, _ := scope(c)
	defer cancel()

	tours, err := h.tours.List(ctx, category)
	if err != nil {
		return err
	}
	if tours == nil {
		tours = []model.Tour{}
	}
	return respond(c, http.StatusOK, "Tours fetched successfully", tours)
}

func (h *TourHandler) Get(c echo.Context) error {
	ctx, cancel, _ := scope(c)
	defer cancel()

	t, err := h.tours.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Tour fetched successfully", t)
}

func (h *TourHandler) Mine(c echo.Context) error {
	ctx, cancel, caller := scope(c)
	defer cancel()

	tours, err := h.tours.Mine(ctx, caller)
	if err != nil {
		return err
	}
	if tours == nil {
		tours = []model.Tour{}
	}
	return respond(c, http.StatusOK, "My tours fetched successfully", tours)
}

func (h *TourHandler) Update(c echo.Context) error {
	var req updateTourReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel, caller := scope(c)
	defer cancel()

	t, err := h.tours.Update(ctx, caller, c.Param("id"), model.TourPatch{
		Title:       req.Title,
		Location:    req.Location,
		Price:       req.Price,
		Duration:    req.Duration,
		Description: req.Description,
		Category:    req.Category,
		Spots:       req.Spots,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Tour updated successfully", t)
}

func (h *TourHandler) Delete(c echo.Context) error {
	ctx, cancel, caller := scope(c)
	defer cancel()

	if err := h.tours.Delete(ctx, caller, c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Tour deleted successfully", nil)
}
