package dto

import (
	"mime/multipart"

	"sala/internal/domains/room/model"
	"sala/shared"
	gDto "sala/shared/dto"
	gModel "sala/shared/model"
	"sala/shared/timezone"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type CreateRoomRequest struct {
	Name     string  `json:"name"     validate:"required,max=100"`
	RoomType string  `json:"roomType" validate:"required,oneof=class laboratory theater"`
	Status   string  `json:"status"   validate:"omitempty,oneof=open reserved closed"`
	TagIDs   []int64 `json:"tagIds"   validate:"omitempty,dive,min=1"`
}

func (c *CreateRoomRequest) ToModel(user string) model.Room {
	status := c.Status
	if status == "" {
		status = model.StatusOpen
	}

	return model.Room{
		ID:        uuid.NewString(),
		Name:      c.Name,
		RoomType:  c.RoomType,
		Status:    status,
		TagIDs:    pq.Int64Array(c.TagIDs),
		PhotoURLs: pq.StringArray{},
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateRoomRequest struct {
	Name     string  `db:"name"      json:"name"     validate:"omitempty,max=100"`
	RoomType string  `db:"room_type" json:"roomType" validate:"omitempty,oneof=class laboratory theater"`
	Status   string  `db:"status"    json:"status"   validate:"omitempty,oneof=open reserved closed"`
	TagIDs   []int64 `json:"tagIds"  validate:"omitempty,dive,min=1"`
}

type AttachRoomImageRequest struct {
	Image       *multipart.FileHeader `json:"image"       validate:"required,mimetypes=image/png image/jpg image/jpeg,maxfilesize=2"`
	ImageFile   multipart.File        `json:"-"`
	Description string                `json:"description" validate:"omitempty,max=255"`
}

type RemoveRoomImageRequest struct {
	URL string `json:"url" validate:"required,url"`
}

type RoomResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	RoomType  string   `json:"roomType"`
	Status    string   `json:"status"`
	TagIDs    []int64  `json:"tagIds"`
	PhotoURLs []string `json:"photoUrls"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.Name = model.Name
	r.RoomType = model.RoomType
	r.Status = model.Status

	r.TagIDs = []int64(model.TagIDs)
	if r.TagIDs == nil {
		r.TagIDs = []int64{}
	}

	r.PhotoURLs = []string(model.PhotoURLs)
	if r.PhotoURLs == nil {
		r.PhotoURLs = []string{}
	}

	r.Metadata.FromModel(model.Metadata)
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}
