package dto

import (
	"sala/internal/domains/tag/model"
	"sala/shared"
	gDto "sala/shared/dto"
	gModel "sala/shared/model"
	"sala/shared/timezone"
)

type CreateTagRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

func (c *CreateTagRequest) ToModel(user string) model.Tag {
	return model.Tag{
		Name: c.Name,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateTagRequest struct {
	Name string `db:"name" json:"name" validate:"required,max=50"`
}

type TagResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	gDto.Metadata
}

func (r *TagResponse) FromModel(model model.Tag) {
	r.ID = model.ID
	r.Name = model.Name
	r.Metadata.FromModel(model.Metadata)
}

type GetTagsResponse struct {
	Tags      []TagResponse `json:"tags"`
	TotalPage int           `json:"total_page"`
	TotalData int           `json:"total_data"`
}

func (r *GetTagsResponse) FromModels(models []model.Tag, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Tags = make([]TagResponse, len(models))
	for i, mod := range models {
		r.Tags[i].FromModel(mod)
	}
}
