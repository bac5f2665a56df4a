package dto

import (
	"sala/internal/domains/user/model"
	gDto "sala/shared/dto"
)

type UpdateProfileRequest struct {
	Email    string `db:"email"     json:"email"     validate:"omitempty,email"`
	FullName string `db:"full_name" json:"full_name" validate:"omitempty,max=100"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type UserResponse struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	FullName *string `json:"full_name,omitempty"`
	Active   bool    `json:"active"`
	gDto.Metadata
}

func (r *UserResponse) FromModel(model model.User) {
	r.ID = model.ID
	r.Email = model.Email
	r.Role = model.Role
	r.FullName = model.FullName
	r.Active = model.Active
	r.Metadata.FromModel(model.Metadata)
}
