package service

import (
	"context"
	"fmt"

	"sala/infras/otel"
	"sala/internal/domains/user/model"
	"sala/internal/domains/user/model/dto"
	"sala/internal/domains/user/repository"
	"sala/shared"
	"sala/shared/constant"
	gDto "sala/shared/dto"
	"sala/shared/failure"
	"sala/shared/password"

	"github.com/rs/zerolog/log"
)

// User serves the authenticated caller's own account. The subject is
// always resolved from the request context, never from the request
// body, so a caller can only ever read or change themselves.
type User interface {
	GetProfile(ctx context.Context) (dto.UserResponse, error)
	UpdateProfile(ctx context.Context, req dto.UpdateProfileRequest) (dto.UserResponse, error)
	ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) error
}

type serviceImpl struct {
	repo repository.User
	otel otel.Otel
}

func New(repo repository.User, otel otel.Otel) User {
	return &serviceImpl{
		repo: repo,
		otel: otel,
	}
}

func (s *serviceImpl) GetProfile(ctx context.Context) (res dto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".user.GetProfile")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, err := s.caller(ctx)
	if err != nil {
		return res, err
	}

	res.FromModel(user)

	return res, nil
}

func (s *serviceImpl) UpdateProfile(ctx context.Context, req dto.UpdateProfileRequest) (res dto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".user.UpdateProfile")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, err := s.caller(ctx)
	if err != nil {
		return res, err
	}

	if req.Email != constant.Empty && req.Email != user.Email {
		taken, err := s.repo.Exist(ctx, s.emailFilter(req.Email))
		if err != nil {
			log.Error().Err(err).Msg("failed to check if email is taken")

			return res, fmt.Errorf("failed to check if email is taken: %w", err)
		}

		if taken {
			return res, failure.BadRequestFromString("email already registered")
		}
	}

	updatedFields := shared.TransformFields(req, user.ID)

	if err = s.repo.Update(ctx, updatedFields, shared.FilterByID(user.ID, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to update profile")

		return res, fmt.Errorf("failed to update profile: %w", err)
	}

	if req.Email != constant.Empty {
		user.Email = req.Email
	}

	if req.FullName != constant.Empty {
		user.FullName = &req.FullName
	}

	res.FromModel(user)

	return res, nil
}

func (s *serviceImpl) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".user.ChangePassword")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, err := s.caller(ctx)
	if err != nil {
		return err
	}

	if err := password.Verify(req.OldPassword, user.Password); err != nil {
		log.Warn().Str("user_id", user.ID).Msg("password change attempt with wrong current password")

		return failure.BadRequestFromString("current password is incorrect")
	}

	hashedPassword, err := password.Hash(req.NewPassword)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")

		return fmt.Errorf("failed to hash password: %w", err)
	}

	updatedFields := shared.TransformFields(struct {
		Password string `db:"password"`
	}{Password: hashedPassword}, user.ID)

	if err = s.repo.Update(ctx, updatedFields, shared.FilterByID(user.ID, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to change password")

		return fmt.Errorf("failed to change password: %w", err)
	}

	return nil
}

func (s *serviceImpl) caller(ctx context.Context) (model.User, error) {
	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	user, err := s.repo.Get(ctx, shared.FilterByID(userID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return user, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty {
		return user, failure.NotFound("user not found") // nolint:wrapcheck
	}

	return user, nil
}

func (s *serviceImpl) emailFilter(email string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldEmail,
				Operator: gDto.FilterOperatorEq,
				Value:    email,
				Table:    model.TableName,
			},
		},
	}
}
