package service_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"sala/infras/otel/mocks"
	userMocks "sala/internal/domains/user/mocks"
	"sala/internal/domains/user/model"
	"sala/internal/domains/user/model/dto"
	"sala/internal/domains/user/service"
	"sala/shared/constant"
	"sala/shared/failure"
	"sala/shared/password"
)

type userFixture struct {
	repo *userMocks.MockUser
	svc  service.User
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &userFixture{
		repo: userMocks.NewMockUser(ctrl),
	}

	f.svc = service.New(f.repo, mocks.NewOtel())

	return f
}

func selfContext(userID string) context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, userID)
}

func profileUser(t *testing.T, plainPassword string) model.User {
	t.Helper()

	hashed, err := password.Hash(plainPassword)
	require.NoError(t, err)

	fullName := "Ada Lovelace"

	return model.User{
		ID:       "user-1",
		Email:    "ada@example.edu",
		Password: hashed,
		Role:     constant.RoleLecturer,
		FullName: &fullName,
		Active:   true,
	}
}

func TestUserService_GetProfile(t *testing.T) {
	t.Run("returns the caller's own profile", func(t *testing.T) {
		f := newUserFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(profileUser(t, "hunter2hunter2"), nil)

		res, err := f.svc.GetProfile(selfContext("user-1"))

		require.NoError(t, err)
		assert.Equal(t, "user-1", res.ID)
		assert.Equal(t, "ada@example.edu", res.Email)
		assert.Equal(t, constant.RoleLecturer, res.Role)
	})

	t.Run("fails with not found when the account is gone", func(t *testing.T) {
		f := newUserFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{}, nil)

		_, err := f.svc.GetProfile(selfContext("ghost"))

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Run("updates the full name", func(t *testing.T) {
		f := newUserFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(profileUser(t, "hunter2hunter2"), nil)
		f.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ any) error {
				assert.Equal(t, "Grace Hopper", fields[model.FieldFullName])
				assert.NotContains(t, fields, model.FieldEmail)

				return nil
			})

		res, err := f.svc.UpdateProfile(selfContext("user-1"), dto.UpdateProfileRequest{FullName: "Grace Hopper"})

		require.NoError(t, err)
		require.NotNil(t, res.FullName)
		assert.Equal(t, "Grace Hopper", *res.FullName)
		assert.Equal(t, "ada@example.edu", res.Email)
	})

	t.Run("changes the email after a uniqueness check", func(t *testing.T) {
		f := newUserFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(profileUser(t, "hunter2hunter2"), nil)
		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ any) error {
				assert.Equal(t, "grace@example.edu", fields[model.FieldEmail])

				return nil
			})

		res, err := f.svc.UpdateProfile(selfContext("user-1"), dto.UpdateProfileRequest{Email: "grace@example.edu"})

		require.NoError(t, err)
		assert.Equal(t, "grace@example.edu", res.Email)
	})

	t.Run("rejects an email that is already registered", func(t *testing.T) {
		f := newUserFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(profileUser(t, "hunter2hunter2"), nil)
		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)

		_, err := f.svc.UpdateProfile(selfContext("user-1"), dto.UpdateProfileRequest{Email: "taken@example.edu"})

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("keeping the same email skips the uniqueness check", func(t *testing.T) {
		f := newUserFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(profileUser(t, "hunter2hunter2"), nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		_, err := f.svc.UpdateProfile(selfContext("user-1"), dto.UpdateProfileRequest{Email: "ada@example.edu", FullName: "Ada L."})

		require.NoError(t, err)
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	t.Run("stores a hash of the new password", func(t *testing.T) {
		f := newUserFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(profileUser(t, "old-password-1"), nil)
		f.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ any) error {
				hashed, ok := fields[model.FieldPassword].(string)
				require.True(t, ok)
				assert.NoError(t, password.Verify("new-password-1", hashed))

				return nil
			})

		err := f.svc.ChangePassword(selfContext("user-1"), dto.ChangePasswordRequest{
			OldPassword: "old-password-1",
			NewPassword: "new-password-1",
		})

		require.NoError(t, err)
	})

	t.Run("rejects a wrong current password", func(t *testing.T) {
		f := newUserFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(profileUser(t, "old-password-1"), nil)

		err := f.svc.ChangePassword(selfContext("user-1"), dto.ChangePasswordRequest{
			OldPassword: "not-the-password",
			NewPassword: "new-password-1",
		})

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("fails with not found when the account is gone", func(t *testing.T) {
		f := newUserFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{}, nil)

		err := f.svc.ChangePassword(selfContext("ghost"), dto.ChangePasswordRequest{
			OldPassword: "old-password-1",
			NewPassword: "new-password-1",
		})

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}
