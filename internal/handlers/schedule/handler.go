package schedule

import (
	"net/http"

	"sala/infras/otel"
	"sala/internal/domains/schedule/model"
	"sala/internal/domains/schedule/model/dto"
	"sala/internal/domains/schedule/service"
	"sala/shared/constant"
	gDto "sala/shared/dto"
	"sala/shared/validator"
	"sala/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Schedule
	otel    otel.Otel
}

func New(service service.Schedule, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/schedules", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateSchedule)
		routerGroup.Get("/", handler.GetSchedules)
		routerGroup.Get("/{id}", handler.GetScheduleByID)
		routerGroup.Delete("/{id}", handler.DeleteSchedule)
		routerGroup.Get("/{id}/booked-dates", handler.GetBookedDates)
	})
}

// CreateSchedule handles the creation of a new schedule.
// @Summary Create a new schedule
// @Description Create a new daily time slot for a room.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param request body dto.CreateScheduleRequest true "Create Schedule Request"
// @Success 201 {object} response.Data[dto.ScheduleResponse] "Schedule created successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/schedules [post]
// @Security BearerAuth
func (handler *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateSchedule")
	defer scope.End()

	req := dto.CreateScheduleRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create schedule")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Schedule created successfully by user " + user)

	response.WithJSON(w, http.StatusCreated, res)
}

// GetSchedules retrieves all schedules based on query parameters.
// @Summary Get all schedules
// @Description Retrieve all schedules with their reservation state for the given date (defaults to today).
// @Tags Schedule
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param room_id query string false "Filter by room ID"
// @Param date query string false "Reservation state date (YYYY-MM-DD, defaults to today)"
// @Success 200 {object} response.Data[dto.GetSchedulesResponse] "List of schedules"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/schedules [get]
// @Security BearerAuth
func (handler *Handler) GetSchedules(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSchedules")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	roomID := r.URL.Query().Get(model.FieldRoomID)
	date := r.URL.Query().Get(constant.RequestParamDate)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	if roomID != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldRoomID,
			Operator: gDto.FilterOperatorEq,
			Value:    roomID,
			Table:    model.TableName,
		})
	}

	schedules, err := handler.service.GetAll(ctx, queryParams, filterGroup, date)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get schedules")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Schedules retrieved successfully")

	response.WithJSON(w, http.StatusOK, schedules)
}

// GetScheduleByID retrieves a schedule by its ID.
// @Summary Get a schedule by ID
// @Description Retrieve a schedule with its reservation state for the given date (defaults to today).
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param date query string false "Reservation state date (YYYY-MM-DD, defaults to today)"
// @Success 200 {object} response.Data[dto.ScheduleResponse] "Schedule details"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/schedules/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetScheduleByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetScheduleByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	date := r.URL.Query().Get(constant.RequestParamDate)

	schedule, err := handler.service.Get(ctx, id, date)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get schedule by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Schedule retrieved successfully")

	response.WithJSON(w, http.StatusOK, schedule)
}

// DeleteSchedule deletes a schedule by its ID.
// @Summary Delete a schedule by ID
// @Description Delete a schedule using its unique identifier. Schedules with active reservations cannot be deleted.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Message "Schedule deleted successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/schedules/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteSchedule")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete schedule")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Schedule deleted successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Schedule deleted successfully")
}

// GetBookedDates lists the upcoming dates a schedule is actively reserved on.
// @Summary Get booked dates for a schedule
// @Description Retrieve the upcoming dates on which the schedule has an active reservation.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Data[dto.BookedDatesResponse] "Booked dates"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/schedules/{id}/booked-dates [get]
// @Security BearerAuth
func (handler *Handler) GetBookedDates(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookedDates")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	res, err := handler.service.BookedDates(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get booked dates")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Booked dates retrieved successfully")

	response.WithJSON(w, http.StatusOK, res)
}
