package service

import (
	"context"
	"fmt"
	"time"

	"sala/config"
	"sala/infras/otel"
	reservationModel "sala/internal/domains/reservation/model"
	reservationRepo "sala/internal/domains/reservation/repository"
	roomModel "sala/internal/domains/room/model"
	roomRepo "sala/internal/domains/room/repository"
	"sala/internal/domains/schedule/model"
	"sala/internal/domains/schedule/model/dto"
	"sala/internal/domains/schedule/repository"
	"sala/shared"
	"sala/shared/cache"
	"sala/shared/constant"
	gDto "sala/shared/dto"
	"sala/shared/failure"
	"sala/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetAllSchedule = "schedule:gets"
	cacheCountSchedule  = "schedule:count"
)

type Schedule interface {
	Create(ctx context.Context, req dto.CreateScheduleRequest) (dto.ScheduleResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup, date string) (dto.GetSchedulesResponse, error)
	Get(ctx context.Context, id string, date string) (dto.ScheduleResponse, error)
	Delete(ctx context.Context, id string) error
	BookedDates(ctx context.Context, id string) (dto.BookedDatesResponse, error)
}

type serviceImpl struct {
	repo            repository.Schedule
	roomRepo        roomRepo.Room
	reservationRepo reservationRepo.Reservation
	cfg             *config.Config
	cache           cache.RedisCache
	otel            otel.Otel
}

func New(
	repo repository.Schedule,
	roomRepo roomRepo.Room,
	reservationRepo reservationRepo.Reservation,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Schedule {
	return &serviceImpl{
		repo:            repo,
		roomRepo:        roomRepo,
		reservationRepo: reservationRepo,
		cfg:             cfg,
		cache:           cache,
		otel:            otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateScheduleRequest) (res dto.ScheduleResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".schedule.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	start, err := time.Parse(constant.TimeOfDayFormat, req.StartTime)
	if err != nil {
		return res, failure.BadRequestFromString("startTime must be a valid HH:mm:ss value")
	}

	end, err := time.Parse(constant.TimeOfDayFormat, req.EndTime)
	if err != nil {
		return res, failure.BadRequestFromString("endTime must be a valid HH:mm:ss value")
	}

	if !start.Before(end) {
		return res, failure.BadRequestFromString("startTime must be strictly before endTime")
	}

	roomExist, err := s.roomRepo.Exist(ctx, shared.FilterByID(req.RoomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check room existence")

		return res, fmt.Errorf("failed to check room existence: %w", err)
	}

	if !roomExist {
		return res, failure.NotFound("room not found") // nolint:wrapcheck
	}

	mod := req.ToModel(user)

	if err = s.repo.Insert(ctx, mod); err != nil {
		log.Error().Err(err).Msg("failed to create schedule")

		return res, fmt.Errorf("failed to create schedule: %w", err)
	}

	res.FromModel(mod, false)

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllSchedule)
		shared.InvalidateCaches(c, s.cache, cacheCountSchedule)
	}()

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup, date string) (res dto.GetSchedulesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".schedule.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	inspectDate, err := s.resolveDate(date)
	if err != nil {
		return res, err
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count schedules")

		return res, fmt.Errorf("failed to count schedules: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get schedules")

		return res, fmt.Errorf("failed to get schedules: %w", err)
	}

	reserved, err := s.reservedOn(ctx, models, inspectDate)
	if err != nil {
		return res, err
	}

	res.FromModels(models, reserved, total, req.Limit)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string, date string) (res dto.ScheduleResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".schedule.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	inspectDate, err := s.resolveDate(date)
	if err != nil {
		return res, err
	}

	schedule, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get schedule")

		return res, fmt.Errorf("failed to get schedule: %w", err)
	}

	if schedule.ID == constant.Empty {
		return res, failure.NotFound("schedule not found") // nolint:wrapcheck
	}

	reserved, err := s.reservedOn(ctx, []model.Schedule{schedule}, inspectDate)
	if err != nil {
		return res, err
	}

	res.FromModel(schedule, reserved[schedule.ID])

	return res, nil
}

// Delete rejects removal while any active reservation still references
// the schedule, so the slot history cannot be orphaned.
func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".schedule.Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if schedule exists")

		return fmt.Errorf("failed to check if schedule exists: %w", err)
	}

	if !exist {
		return failure.NotFound("schedule not found") // nolint:wrapcheck
	}

	hasActive, err := s.reservationRepo.Exist(ctx, reservationRepo.ActiveScheduleFilter(id))
	if err != nil {
		log.Error().Err(err).Msg("failed to check active reservations")

		return fmt.Errorf("failed to check active reservations: %w", err)
	}

	if hasActive {
		return failure.Conflict("schedule still has active reservations") // nolint:wrapcheck
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Msg("failed to delete schedule")

		return fmt.Errorf("failed to delete schedule: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllSchedule)
		shared.InvalidateCaches(c, s.cache, cacheCountSchedule)
	}()

	return nil
}

// BookedDates lists the upcoming dates for which the schedule carries
// an active reservation. Calendar pickers disable exactly these days.
func (s *serviceImpl) BookedDates(ctx context.Context, id string) (res dto.BookedDatesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".schedule.BookedDates")
	defer scope.End()
	defer scope.TraceIfError(err)

	exist, err := s.repo.Exist(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if schedule exists")

		return res, fmt.Errorf("failed to check if schedule exists: %w", err)
	}

	if !exist {
		return res, failure.NotFound("schedule not found") // nolint:wrapcheck
	}

	filter := reservationRepo.UpcomingActiveDatesFilter(id, timezone.Today())
	params := gDto.QueryParams{SortBy: reservationModel.FieldDate, SortDir: gDto.SortDirAsc}

	reservations, err := s.reservationRepo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booked dates")

		return res, fmt.Errorf("failed to get booked dates: %w", err)
	}

	res.SchedID = id
	res.Dates = make([]string, len(reservations))

	for i, reservation := range reservations {
		res.Dates[i] = reservation.Date.Format(constant.DateFormat)
	}

	return res, nil
}

func (s *serviceImpl) resolveDate(date string) (time.Time, error) {
	if date == constant.Empty {
		return timezone.Today(), nil
	}

	// Parsed in the application timezone so the inspected date lines up
	// with stored reservation dates whatever the configured offset.
	parsed, err := timezone.Parse(constant.DateFormat, date)
	if err != nil {
		return time.Time{}, failure.BadRequestFromString("date must be a valid YYYY-MM-DD value")
	}

	return parsed, nil
}

// reservedOn resolves the derived isReserved flag for each schedule on
// the inspected date.
func (s *serviceImpl) reservedOn(ctx context.Context, models []model.Schedule, date time.Time) (map[string]bool, error) {
	reserved := make(map[string]bool, len(models))

	if len(models) == 0 {
		return reserved, nil
	}

	ids := make([]string, len(models))
	for i, mod := range models {
		ids[i] = mod.ID
	}

	reservations, err := s.reservationRepo.GetAll(ctx, gDto.QueryParams{}, reservationRepo.ActiveForSchedulesFilter(ids, date))
	if err != nil {
		log.Error().Err(err).Msg("failed to resolve reserved schedules")

		return reserved, fmt.Errorf("failed to resolve reserved schedules: %w", err)
	}

	for _, reservation := range reservations {
		reserved[reservation.SchedID] = true
	}

	return reserved, nil
}
