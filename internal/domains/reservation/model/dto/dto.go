package dto

import (
	"time"

	"sala/internal/domains/reservation/model"
	"sala/shared"
	"sala/shared/constant"
	gDto "sala/shared/dto"
	gModel "sala/shared/model"
	"sala/shared/timezone"

	"github.com/google/uuid"
)

type CreateReservationRequest struct {
	SchedID     string `json:"schedId"     validate:"required,uuid"`
	Date        string `json:"date"        validate:"required,datetime=2006-01-02"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

func (c *CreateReservationRequest) ToModel(user string, date time.Time) model.Reservation {
	return model.Reservation{
		ID:          uuid.NewString(),
		SchedID:     c.SchedID,
		UserID:      user,
		Date:        date,
		Description: c.Description,
		Status:      model.StatusWaiting,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateReservationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted denied"`
}

type ReservationResponse struct {
	ID          string `json:"id"`
	SchedID     string `json:"schedId"`
	UserID      string `json:"userId"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Status      string `json:"status"`
	gDto.Metadata
}

func (r *ReservationResponse) FromModel(model model.Reservation) {
	r.ID = model.ID
	r.SchedID = model.SchedID
	r.UserID = model.UserID
	r.Date = model.Date.Format(constant.DateFormat)
	r.Description = model.Description
	r.Status = model.Status
	r.Metadata.FromModel(model.Metadata)
}

type GetReservationsResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
	TotalPage    int                   `json:"total_page"`
	TotalData    int                   `json:"total_data"`
}

func (r *GetReservationsResponse) FromModels(models []model.Reservation, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Reservations = make([]ReservationResponse, len(models))
	for i, mod := range models {
		r.Reservations[i].FromModel(mod)
	}
}
