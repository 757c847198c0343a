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
	"github.com/iliyamo/tour-guide-marketplace/internal/utils"
)

// UserService manages accounts and profiles.
type UserService struct {
	users      UserRepository
	media      MediaUploader
	bcryptCost int
}

func NewUserService(users UserRepository, media MediaUploader, bcryptCost int) *UserService {
	return &UserService{users: users, media: media, bcryptCost: bcryptCost}
}

// RegisterInput is a self-registration request.  An empty Role registers a
// tourist.
type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	Phone        string
	Address      string
	Role         model.Role
	PricePerHour *model.Money
}

// Register creates an account.  Nobody can register as ADMIN.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if in.Role == "" {
		in.Role = model.RoleTourist
	}
	if in.Role == model.RoleAdmin {
		return nil, apperr.Permission("cannot register as admin")
	}
	if !in.Role.Valid() {
		return nil, apperr.Validation("invalid role %q", in.Role)
	}
	in.Email = repository.NormalizeEmail(in.Email)
	if strings.TrimSpace(in.Name) == "" || in.Email == "" || in.Password == "" {
		return nil, apperr.Validation("name, email and password are required")
	}

	hash, err := hashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &model.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		PasswordHash: hash,
		Phone:        in.Phone,
		Address:      in.Address,
		Role:         in.Role,
		IsActive:     model.StateActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Role == model.RoleGuide && in.PricePerHour != nil {
		if err := checkPricePerHour(*in.PricePerHour); err != nil {
			return nil, err
		}
		u.PricePerHour = in.PricePerHour
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, apperr.Conflict("user already exists")
		}
		return nil, err
	}
	return u, nil
}

// Me returns the caller's profile.
func (s *UserService) Me(ctx context.Context, caller authz.Caller) (*model.User, error) {
	if err := authz.Authorize(caller, authz.ViewSelf); err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, notFoundAs(err, "user not found")
	}
	return &u, nil
}

// List pages through all users.  Admin only.
func (s *UserService) List(ctx context.Context, caller authz.Caller, req PageRequest) (Page[model.User], error) {
	if err := authz.Authorize(caller, authz.ListUsers); err != nil {
		return Page[model.User]{}, err
	}
	req = req.normalize()
	users, total, err := s.users.List(ctx, req.Limit, req.offset())
	if err != nil {
		return Page[model.User]{}, err
	}
	return Page[model.User]{Data: users, Meta: newMeta(req, total)}, nil
}

// UpdateUserInput holds the profile changes.  Nil fields are unchanged.
type UpdateUserInput struct {
	Name         *string
	Email        *string
	Password     *string
	Phone        *string
	Address      *string
	PricePerHour *model.Money
	Role         *model.Role
	IsActive     *model.ActiveState
}

// Update changes a profile.  Users may edit themselves; admins may edit
// anyone and are the only ones who can change role or account state.
func (s *UserService) Update(ctx context.Context, caller authz.Caller, id string, in UpdateUserInput, picture *Upload) (*model.User, error) {
	if err := authz.Authorize(caller, authz.UpdateUser, authz.Is(id)); err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "user not found")
	}

	if in.Email != nil && repository.NormalizeEmail(*in.Email) != u.Email {
		return nil, apperr.Validation("email cannot be changed")
	}
	if (in.Role != nil && *in.Role != u.Role) || (in.IsActive != nil && *in.IsActive != u.IsActive) {
		if caller.Role != model.RoleAdmin {
			return nil, apperr.Permission("only admins can change role or account state")
		}
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, apperr.Validation("invalid role %q", *in.Role)
		}
		u.Role = *in.Role
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}
	if in.Address != nil {
		u.Address = *in.Address
	}
	if in.PricePerHour != nil {
		if err := checkPricePerHour(*in.PricePerHour); err != nil {
			return nil, err
		}
		u.PricePerHour = in.PricePerHour
	}
	if in.Password != nil {
		hash, err := hashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	if picture != nil {
		url, err := s.media.Upload(ctx, picture.Filename, picture.Body)
		if err != nil {
			return nil, err
		}
		u.Picture = url
	}
	u.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, &u); err != nil {
		return nil, notFoundAs(err, "user not found")
	}
	return &u, nil
}

func checkPricePerHour(m model.Money) error {
	if m.IsNegative() {
		return apperr.Validation("pricePerHour cannot be negative")
	}
	return checkMoney("pricePerHour", m, model.MaxAmount)
}

func hashPassword(plain string, cost int) (string, error) {
	hash, err := utils.HashPassword(plain, cost)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return "", apperr.Validation("%s", err.Error())
	}
	return hash, err
}
