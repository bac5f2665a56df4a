package dto

import (
	"sala/internal/domains/schedule/model"
	"sala/shared"
	gDto "sala/shared/dto"
	gModel "sala/shared/model"
	"sala/shared/timezone"

	"github.com/google/uuid"
)

type CreateScheduleRequest struct {
	RoomID    string `json:"roomId"    validate:"required,uuid"`
	StartTime string `json:"startTime" validate:"required,datetime=15:04:05"`
	EndTime   string `json:"endTime"   validate:"required,datetime=15:04:05"`
}

func (c *CreateScheduleRequest) ToModel(user string) model.Schedule {
	return model.Schedule{
		ID:        uuid.NewString(),
		RoomID:    c.RoomID,
		StartTime: c.StartTime,
		EndTime:   c.EndTime,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type ScheduleResponse struct {
	ID        string `json:"id"`
	RoomID    string `json:"roomId"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	// IsReserved is derived per request from the active reservation set
	// for the date under inspection; it is never stored.
	IsReserved bool `json:"isReserved"`
	gDto.Metadata
}

func (r *ScheduleResponse) FromModel(model model.Schedule, isReserved bool) {
	r.ID = model.ID
	r.RoomID = model.RoomID
	r.StartTime = model.StartTime
	r.EndTime = model.EndTime
	r.IsReserved = isReserved
	r.Metadata.FromModel(model.Metadata)
}

type GetSchedulesResponse struct {
	Schedules []ScheduleResponse `json:"schedules"`
	TotalPage int                `json:"total_page"`
	TotalData int                `json:"total_data"`
}

func (r *GetSchedulesResponse) FromModels(models []model.Schedule, reserved map[string]bool, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Schedules = make([]ScheduleResponse, len(models))
	for i, mod := range models {
		r.Schedules[i].FromModel(mod, reserved[mod.ID])
	}
}

type BookedDatesResponse struct {
	SchedID string   `json:"schedId"`
	Dates   []string `json:"dates"`
}
