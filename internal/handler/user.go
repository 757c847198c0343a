package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-guide-marketplace/internal/model"
	"github.com/iliyamo/tour-guide-marketplace/internal/service"
)

// UserHandler serves registration and profile endpoints.
type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type registerReq struct {
	Name         string       `json:"name" validate:"required"`
	Email        string       `json:"email" validate:"required,email"`
	Password     string       `json:"password" validate:"required,min=6"`
	Phone        string       `json:"phone"`
	Address      string       `json:"address"`
	Role         model.Role   `json:"role" validate:"omitempty,oneof=ADMIN GUIDE TOURIST"`
	PricePerHour *model.Money `json:"pricePerHour"`
}

type updateUserReq struct {
	Name         *string            `json:"name"`
	Email        *string            `json:"email" validate:"omitempty,email"`
	Password     *string            `json:"password" validate:"omitempty,min=6"`
	Phone        *string            `json:"phone"`
	Address      *string            `json:"address"`
	PricePerHour *model.Money       `json:"pricePerHour"`
	Role         *model.Role        `json:"role" validate:"omitempty,oneof=ADMIN GUIDE TOURIST"`
	IsActive     *model.ActiveState `json:"isActive" validate:"omitempty,oneof=ACTIVE INACTIVE BLOCKED"`
}

// Register creates a TOURIST or GUIDE account.
func (h *UserHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel, _ := scope(c)
	defer cancel()

	u, err := h.users.Register(ctx, service.RegisterInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Phone:        req.Phone,
		Address:      req.Address,
		Role:         req.Role,
		PricePerHour: req.PricePerHour,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "User Created Successfully", u)
}

// List pages through all users.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel, caller := scope(c)
	defer cancel()

	page, err := h.users.List(ctx, caller, pageRequest(c))
	if err != nil {
		return err
	}
	return respondPage(c, "All Users Retrieved Successfully", page)
}

// Me returns the caller's profile.
func (h *UserHandler) Me(c echo.Context) error {
	ctx, cancel, caller := scope(c)
	defer cancel()

	u, err := h.users.Me(ctx, caller)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User Retrieved Successfully", u)
}

// Update edits a profile; an optional "file" replaces the picture.
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserReq
	upload, done, err := bindForm(c, &req)
	if err != nil {
		return err
	}
	defer done()
	ctx, cancel, caller := scope(c)
	defer cancel()

	u, err := h.users.Update(ctx, caller, c.Param("id"), service.UpdateUserInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Phone:        req.Phone,
		Address:      req.Address,
		PricePerHour: req.PricePerHour,
		Role:         req.Role,
		IsActive:     req.IsActive,
	}, upload)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User Updated Successfully", u)
}
