package tag

import (
	"net/http"
	"strconv"

	"sala/infras/otel"
	"sala/internal/domains/tag/model"
	"sala/internal/domains/tag/model/dto"
	"sala/internal/domains/tag/service"
	"sala/shared/constant"
	gDto "sala/shared/dto"
	"sala/shared/failure"
	"sala/shared/validator"
	"sala/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Tag
	otel    otel.Otel
}

func New(service service.Tag, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/tags", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateTag)
		routerGroup.Get("/", handler.GetTags)
		routerGroup.Get("/{id}", handler.GetTagByID)
		routerGroup.Put("/{id}", handler.UpdateTag)
		routerGroup.Delete("/{id}", handler.DeleteTag)
	})
}

// CreateTag handles the creation of a new tag.
// @Summary Create a new tag
// @Description Create a new facility tag with the provided name.
// @Tags Tag
// @Accept json
// @Produce json
// @Param request body dto.CreateTagRequest true "Create Tag Request"
// @Success 201 {object} response.Data[dto.TagResponse] "Tag created successfully"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/tags [post]
// @Security BearerAuth
func (handler *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateTag")
	defer scope.End()

	req := dto.CreateTagRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create tag")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Tag created successfully by user " + user)

	response.WithJSON(w, http.StatusCreated, res)
}

// GetTags retrieves all tags based on query parameters.
// @Summary Get all tags
// @Description Retrieve all tags with optional filtering and pagination.
// @Tags Tag
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param name query string false "Filter by name"
// @Success 200 {object} response.Data[dto.GetTagsResponse] "List of tags"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/tags [get]
// @Security BearerAuth
func (handler *Handler) GetTags(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetTags")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	name := r.URL.Query().Get(model.FieldName)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	if name != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldName,
			Operator: gDto.FilterOperatorLike,
			Value:    name,
			Table:    model.TableName,
		})
	}

	tags, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get tags")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Tags retrieved successfully")

	response.WithJSON(w, http.StatusOK, tags)
}

// GetTagByID retrieves a tag by its ID.
// @Summary Get a tag by ID
// @Description Retrieve a tag by its numeric identifier.
// @Tags Tag
// @Accept json
// @Produce json
// @Param id path int true "Tag ID"
// @Success 200 {object} response.Data[dto.TagResponse] "Tag details"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/tags/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetTagByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetTagByID")
	defer scope.End()

	id, err := handler.tagID(r)
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	tag, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get tag by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Tag retrieved successfully")

	response.WithJSON(w, http.StatusOK, tag)
}

// UpdateTag updates an existing tag by its ID.
// @Summary Update a tag by ID
// @Description Rename an existing tag.
// @Tags Tag
// @Accept json
// @Produce json
// @Param id path int true "Tag ID"
// @Param request body dto.UpdateTagRequest true "Update Tag Request"
// @Success 200 {object} response.Message "Tag updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/tags/{id} [put]
// @Security BearerAuth
func (handler *Handler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateTag")
	defer scope.End()

	id, err := handler.tagID(r)
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	req := dto.UpdateTagRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update tag")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Tag updated successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Tag updated successfully")
}

// DeleteTag deletes a tag by its ID.
// @Summary Delete a tag by ID
// @Description Delete a tag using its numeric identifier.
// @Tags Tag
// @Accept json
// @Produce json
// @Param id path int true "Tag ID"
// @Success 200 {object} response.Message "Tag deleted successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/tags/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteTag")
	defer scope.End()

	id, err := handler.tagID(r)
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete tag")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Tag deleted successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Tag deleted successfully")
}

func (handler *Handler) tagID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		return 0, failure.BadRequestFromString("tag id must be a number") // nolint:wrapcheck
	}

	return id, nil
}
