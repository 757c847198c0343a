package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/tour-guide-marketplace/internal/apperr"
	"github.com/iliyamo/tour-guide-marketplace/internal/model"
	"github.com/iliyamo/tour-guide-marketplace/internal/repository"
	"github.com/iliyamo/tour-guide-marketplace/internal/service"
	"github.com/iliyamo/tour-guide-marketplace/internal/utils"
)

func newUserService(t *testing.T) (*service.UserService, *service.MockUserRepository) {
	ctrl := gomock.NewController(t)
	users := service.NewMockUserRepository(ctrl)
	return service.NewUserService(users, service.NewMockMediaUploader(ctrl), bcrypt.MinCost), users
}

func TestUserService_Register(t *testing.T) {
	tests := []struct {
		name      string
		in        service.RegisterInput
		setupMock func(users *service.MockUserRepository)
		wantKind  apperr.Kind
		wantRole  model.Role
	}{
		{
			name: "DefaultsToTourist",
			in:   service.RegisterInput{Name: "Ann", Email: " Ann@Example.com ", Password: "secret"},
			setupMock: func(users *service.MockUserRepository) {
				users.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *model.User) error {
					assert.Equal(t, "ann@example.com", u.Email)
					assert.True(t, utils.VerifyPassword(u.PasswordHash, "secret"))
					return nil
				})
			},
			wantRole: model.RoleTourist,
		},
		{
			name: "Guide",
			in:   service.RegisterInput{Name: "Gus", Email: "g@example.com", Password: "secret", Role: model.RoleGuide, PricePerHour: dec("30")},
			setupMock: func(users *service.MockUserRepository) {
				users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantRole: model.RoleGuide,
		},
		{
			name:     "GuideRateTooPrecise",
			in:       service.RegisterInput{Name: "Gus", Email: "g@example.com", Password: "secret", Role: model.RoleGuide, PricePerHour: dec("30.555")},
			wantKind: apperr.KindValidation,
		},
		{
			name:     "GuideRateNegative",
			in:       service.RegisterInput{Name: "Gus", Email: "g@example.com", Password: "secret", Role: model.RoleGuide, PricePerHour: dec("-1")},
			wantKind: apperr.KindValidation,
		},
		{
			name:     "PasswordTooLong",
			in:       service.RegisterInput{Name: "Ann", Email: "a@example.com", Password: strings.Repeat("x", 73)},
			wantKind: apperr.KindValidation,
		},
		{
			name:     "AdminRefused",
			in:       service.RegisterInput{Name: "Root", Email: "r@example.com", Password: "x", Role: model.RoleAdmin},
			wantKind: apperr.KindPermission,
		},
		{
			name:     "MissingPassword",
			in:       service.RegisterInput{Name: "Ann", Email: "a@example.com"},
			wantKind: apperr.KindValidation,
		},
		{
			name: "Duplicate",
			in:   service.RegisterInput{Name: "Ann", Email: "a@example.com", Password: "secret"},
			setupMock: func(users *service.MockUserRepository) {
				users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(repository.ErrEmailExists)
			},
			wantKind: apperr.KindConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, users := newUserService(t)
			if tt.setupMock != nil {
				tt.setupMock(users)
			}

			got, err := svc.Register(context.Background(), tt.in)
			if tt.wantKind != 0 {
				assert.True(t, apperr.IsKind(err, tt.wantKind), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, got.Role)
			assert.Equal(t, model.StateActive, got.IsActive)
			assert.NotEmpty(t, got.ID)
		})
	}
}

func TestUserService_Update(t *testing.T) {
	stored := model.User{ID: tourist.UserID, Name: "Ann", Email: "t@example.com", Role: model.RoleTourist, IsActive: model.StateActive}
	guideRole := model.RoleGuide
	blocked := model.StateBlocked

	t.Run("SelfRenames", func(t *testing.T) {
		svc, users := newUserService(t)
		users.EXPECT().GetByID(gomock.Any(), tourist.UserID).Return(stored, nil)
		users.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

		got, err := svc.Update(context.Background(), tourist, tourist.UserID, service.UpdateUserInput{Name: strPtr(" Annie ")}, nil)
		require.NoError(t, err)
		assert.Equal(t, "Annie", got.Name)
	})

	t.Run("EmailImmutable", func(t *testing.T) {
		svc, users := newUserService(t)
		users.EXPECT().GetByID(gomock.Any(), tourist.UserID).Return(stored, nil)

		_, err := svc.Update(context.Background(), tourist, tourist.UserID, service.UpdateUserInput{Email: strPtr("new@example.com")}, nil)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("SameEmailAccepted", func(t *testing.T) {
		svc, users := newUserService(t)
		users.EXPECT().GetByID(gomock.Any(), tourist.UserID).Return(stored, nil)
		users.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

		_, err := svc.Update(context.Background(), tourist, tourist.UserID, service.UpdateUserInput{Email: strPtr("T@example.com")}, nil)
		assert.NoError(t, err)
	})

	t.Run("SelfPromotionDenied", func(t *testing.T) {
		svc, users := newUserService(t)
		users.EXPECT().GetByID(gomock.Any(), tourist.UserID).Return(stored, nil)

		_, err := svc.Update(context.Background(), tourist, tourist.UserID, service.UpdateUserInput{Role: &guideRole}, nil)
		assert.True(t, apperr.IsKind(err, apperr.KindPermission))
	})

	t.Run("OtherUserDenied", func(t *testing.T) {
		svc, _ := newUserService(t)
		_, err := svc.Update(context.Background(), otherTourist, tourist.UserID, service.UpdateUserInput{Name: strPtr("x")}, nil)
		assert.True(t, apperr.IsKind(err, apperr.KindPermission))
	})

	t.Run("AdminBlocks", func(t *testing.T) {
		svc, users := newUserService(t)
		users.EXPECT().GetByID(gomock.Any(), tourist.UserID).Return(stored, nil)
		users.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *model.User) error {
			assert.Equal(t, model.StateBlocked, u.IsActive)
			return nil
		})

		_, err := svc.Update(context.Background(), admin, tourist.UserID, service.UpdateUserInput{IsActive: &blocked}, nil)
		assert.NoError(t, err)
	})
}

func TestUserService_List(t *testing.T) {
	svc, users := newUserService(t)
	users.EXPECT().List(gomock.Any(), 5, 5).Return([]model.User{{ID: "u6"}}, 6, nil)

	got, err := svc.List(context.Background(), admin, service.PageRequest{Page: 2, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, got.Data, 1)
	assert.Equal(t, service.PageMeta{Total: 6, Page: 2, Limit: 5, TotalPages: 2}, got.Meta)

	_, err = svc.List(context.Background(), guide, service.PageRequest{})
	assert.True(t, apperr.IsKind(err, apperr.KindPermission))
}
