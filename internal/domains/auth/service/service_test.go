package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"sala/config"
	"sala/infras/jwt"
	jwtMocks "sala/infras/jwt/mocks"
	"sala/infras/otel/mocks"
	"sala/internal/domains/auth/model/dto"
	"sala/internal/domains/auth/service"
	userMocks "sala/internal/domains/user/mocks"
	userModel "sala/internal/domains/user/model"
	"sala/shared/constant"
	gDto "sala/shared/dto"
	"sala/shared/failure"
	"sala/shared/password"
)

type authFixture struct {
	users *userMocks.MockUser
	jwt   *jwtMocks.MockJWT
	svc   service.Auth
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &authFixture{
		users: userMocks.NewMockUser(ctrl),
		jwt:   jwtMocks.NewMockJWT(ctrl),
	}

	f.svc = service.New(f.users, &config.Config{}, mocks.NewOtel(), f.jwt)

	return f
}

func storedUser(t *testing.T, plainPassword string) userModel.User {
	t.Helper()

	hashed, err := password.Hash(plainPassword)
	require.NoError(t, err)

	return userModel.User{
		ID:       "user-1",
		Email:    "lecturer@example.edu",
		Password: hashed,
		Role:     constant.RoleLecturer,
		Active:   true,
	}
}

func TestAuthService_Register(t *testing.T) {
	t.Run("registers a new student by default", func(t *testing.T) {
		f := newAuthFixture(t)

		f.users.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.users.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, user userModel.User) error {
				assert.Equal(t, "new@example.edu", user.Email)
				assert.Equal(t, constant.RoleStudent, user.Role)
				assert.True(t, user.Active)
				assert.NoError(t, password.Verify("hunter2hunter2", user.Password))

				return nil
			})

		err := f.svc.Register(context.Background(), dto.RegisterRequest{
			Email:    "new@example.edu",
			Password: "hunter2hunter2",
		})

		assert.NoError(t, err)
	})

	t.Run("registers a lecturer when the role is given", func(t *testing.T) {
		f := newAuthFixture(t)

		f.users.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.users.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, user userModel.User) error {
				assert.Equal(t, constant.RoleLecturer, user.Role)

				return nil
			})

		err := f.svc.Register(context.Background(), dto.RegisterRequest{
			Email:    "lecturer@example.edu",
			Password: "hunter2hunter2",
			Role:     constant.RoleLecturer,
		})

		assert.NoError(t, err)
	})

	t.Run("rejects an already registered email", func(t *testing.T) {
		f := newAuthFixture(t)

		f.users.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)

		err := f.svc.Register(context.Background(), dto.RegisterRequest{
			Email:    "taken@example.edu",
			Password: "hunter2hunter2",
		})

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func TestAuthService_Login(t *testing.T) {
	pair := &jwt.TokenPair{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		TokenType:    "Bearer",
		ExpiresIn:    900,
	}

	t.Run("returns a token pair with the caller role", func(t *testing.T) {
		f := newAuthFixture(t)
		user := storedUser(t, "hunter2hunter2")

		f.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)
		f.jwt.EXPECT().GenerateTokenPair(user.ID, user.Email, user.Role).Return(pair, nil)
		f.users.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Contains(t, fields, userModel.FieldLastLogin)

				return nil
			})

		res, err := f.svc.Login(context.Background(), dto.LoginRequest{
			Email:    user.Email,
			Password: "hunter2hunter2",
		})

		require.NoError(t, err)
		assert.Equal(t, "access-token", res.AccessToken)
		assert.Equal(t, constant.RoleLecturer, res.Role)
	})

	t.Run("rejects an unknown email", func(t *testing.T) {
		f := newAuthFixture(t)

		f.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, nil)

		_, err := f.svc.Login(context.Background(), dto.LoginRequest{
			Email:    "ghost@example.edu",
			Password: "hunter2hunter2",
		})

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		f := newAuthFixture(t)
		user := storedUser(t, "hunter2hunter2")

		f.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)

		_, err := f.svc.Login(context.Background(), dto.LoginRequest{
			Email:    user.Email,
			Password: "wrong-password",
		})

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("rejects a deactivated account", func(t *testing.T) {
		f := newAuthFixture(t)
		user := storedUser(t, "hunter2hunter2")
		user.Active = false

		f.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)

		_, err := f.svc.Login(context.Background(), dto.LoginRequest{
			Email:    user.Email,
			Password: "hunter2hunter2",
		})

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	t.Run("rotates the pair for a valid refresh token", func(t *testing.T) {
		f := newAuthFixture(t)

		f.jwt.EXPECT().
			RefreshTokens("valid-refresh").
			Return(&jwt.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh", ExpiresIn: 900}, nil)

		res, err := f.svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: "valid-refresh"})

		require.NoError(t, err)
		assert.Equal(t, "new-access", res.AccessToken)
		assert.Equal(t, "new-refresh", res.RefreshToken)
	})

	t.Run("fails with unauthorized for a bad token", func(t *testing.T) {
		f := newAuthFixture(t)

		f.jwt.EXPECT().RefreshTokens("garbage").Return(nil, errors.New("invalid refresh token"))

		_, err := f.svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: "garbage"})

		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
	})
}
