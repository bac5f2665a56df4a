package service

import (
	"context"
	"fmt"
	"time"

	"sala/config"
	"sala/infras/otel"
	"sala/internal/domains/reservation/model"
	"sala/internal/domains/reservation/model/dto"
	"sala/internal/domains/reservation/repository"
	roomModel "sala/internal/domains/room/model"
	roomRepo "sala/internal/domains/room/repository"
	scheduleModel "sala/internal/domains/schedule/model"
	scheduleRepo "sala/internal/domains/schedule/repository"
	"sala/internal/events"
	"sala/shared"
	"sala/shared/cache"
	"sala/shared/constant"
	gDto "sala/shared/dto"
	"sala/shared/failure"
	"sala/shared/keylock"
	"sala/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetAllReservation = "reservation:gets"
	cacheCountReservation  = "reservation:count"
)

type Reservation interface {
	Availability(ctx context.Context, schedID string, date time.Time) (bool, error)
	Create(ctx context.Context, req dto.CreateReservationRequest) (dto.ReservationResponse, error)
	UpdateStatus(ctx context.Context, id string, req dto.UpdateReservationStatusRequest) (dto.ReservationResponse, error)
	Cancel(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (dto.ReservationResponse, error)
	GetMine(ctx context.Context, req gDto.QueryParams) (dto.GetReservationsResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetReservationsResponse, error)
}

type serviceImpl struct {
	repo         repository.Reservation
	scheduleRepo scheduleRepo.Schedule
	roomRepo     roomRepo.Room
	cfg          *config.Config
	cache        cache.RedisCache
	otel         otel.Otel
	slotLock     *keylock.KeyLock
	publisher    events.Publisher
}

func New(
	repo repository.Reservation,
	scheduleRepo scheduleRepo.Schedule,
	roomRepo roomRepo.Room,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	slotLock *keylock.KeyLock,
	publisher events.Publisher,
) Reservation {
	return &serviceImpl{
		repo:         repo,
		scheduleRepo: scheduleRepo,
		roomRepo:     roomRepo,
		cfg:          cfg,
		cache:        cache,
		otel:         otel,
		slotLock:     slotLock,
		publisher:    publisher,
	}
}

// slotAvailability is the outcome of resolving the four bookability
// rules for one slot-instance. reason carries the failure a booking
// attempt should return when the slot is not available.
type slotAvailability struct {
	available bool
	reason    error
	room      roomModel.Room
}

// resolveAvailability decides whether the slot-instance (schedID, date)
// is bookable: the date must not be in the past, the schedule must
// exist, the owning room must be open, and no active reservation may
// hold the slot. Pure query, no side effects.
func (s *serviceImpl) resolveAvailability(ctx context.Context, schedID string, date time.Time) (resolution slotAvailability, err error) {
	if date.Before(timezone.Today()) {
		resolution.reason = failure.BadRequestFromString("date must not be in the past")

		return resolution, nil
	}

	schedule, err := s.scheduleRepo.Get(ctx, shared.FilterByID(schedID, scheduleModel.FieldID, scheduleModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get schedule")

		return resolution, fmt.Errorf("failed to get schedule: %w", err)
	}

	if schedule.ID == constant.Empty {
		return resolution, failure.NotFound("schedule not found") // nolint:wrapcheck
	}

	resolution.room, err = s.roomRepo.Get(ctx, shared.FilterByID(schedule.RoomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return resolution, fmt.Errorf("failed to get room: %w", err)
	}

	if resolution.room.Status == roomModel.StatusClosed {
		resolution.reason = failure.Conflict("room is closed for booking") // nolint:wrapcheck

		return resolution, nil
	}

	taken, err := s.repo.Exist(ctx, repository.ActiveSlotFilter(schedID, date))
	if err != nil {
		log.Error().Err(err).Msg("failed to check slot availability")

		return resolution, fmt.Errorf("failed to check slot availability: %w", err)
	}

	if taken {
		resolution.reason = failure.Conflict("slot is already reserved for this date") // nolint:wrapcheck

		return resolution, nil
	}

	resolution.available = true

	return resolution, nil
}

// Availability reports whether the slot-instance (schedID, date) is
// currently bookable. Create consults the same resolution before
// inserting, so the answer here is exactly the booking outcome.
func (s *serviceImpl) Availability(ctx context.Context, schedID string, date time.Time) (available bool, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Availability")
	defer scope.End()
	defer scope.TraceIfError(err)

	resolution, err := s.resolveAvailability(ctx, schedID, date)
	if err != nil {
		return false, err
	}

	return resolution.available, nil
}

// Create books the slot-instance (schedId, date) in waiting status.
// The check-then-insert sequence runs under a per-slot lock, and the
// partial unique index on active reservations backstops multi-node
// deployments; either way the loser of a race sees the same conflict
// as a pre-existing booking.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateReservationRequest) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	// Parsed in the application timezone so today's date compares equal
	// to timezone.Today() regardless of the configured offset.
	date, err := timezone.Parse(constant.DateFormat, req.Date)
	if err != nil {
		return res, failure.BadRequestFromString("date must be a valid YYYY-MM-DD value")
	}

	slotKey := shared.BuildCacheKey(req.SchedID, req.Date)
	s.slotLock.Lock(slotKey)
	defer s.slotLock.Unlock(slotKey)

	resolution, err := s.resolveAvailability(ctx, req.SchedID, date)
	if err != nil {
		return res, err
	}

	if !resolution.available {
		return res, resolution.reason
	}

	room := resolution.room

	mod := req.ToModel(user, date)

	if err = s.repo.Insert(ctx, mod); err != nil {
		if shared.IsUniqueViolation(err) {
			return res, failure.Conflict("slot is already reserved for this date") // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to create reservation")

		return res, fmt.Errorf("failed to create reservation: %w", err)
	}

	res.FromModel(mod)

	s.publisher.PublishReservationEvent(ctx, events.ReservationEvent{
		Type:          events.TypeReservationCreated,
		ReservationID: mod.ID,
		SchedID:       mod.SchedID,
		RoomID:        room.ID,
		UserID:        mod.UserID,
		Date:          req.Date,
		Status:        mod.Status,
	})

	s.invalidateListings(ctx)

	return res, nil
}

// UpdateStatus drives the waiting -> accepted/denied transition. The
// route is admin-only, but the role is re-checked here so the rule
// holds even if the service is reached another way.
func (s *serviceImpl) UpdateStatus(ctx context.Context, id string, req dto.UpdateReservationStatusRequest) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.UpdateStatus")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	if role != constant.RoleAdministrator {
		return res, failure.ForbiddenError
	}

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	reservation, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservation")

		return res, fmt.Errorf("failed to get reservation: %w", err)
	}

	if reservation.ID == constant.Empty {
		return res, failure.NotFound("reservation not found") // nolint:wrapcheck
	}

	if reservation.Status != model.StatusWaiting {
		return res, failure.InvalidState(fmt.Sprintf("cannot move a %s reservation to %s", reservation.Status, req.Status)) // nolint:wrapcheck
	}

	updatedFields := shared.TransformFields(struct {
		Status string `db:"status"`
	}{Status: req.Status}, user)

	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update reservation status")

		return res, fmt.Errorf("failed to update reservation status: %w", err)
	}

	reservation.Status = req.Status
	res.FromModel(reservation)

	eventType := events.TypeReservationAccepted
	if req.Status == model.StatusDenied {
		eventType = events.TypeReservationDenied
	}

	s.publisher.PublishReservationEvent(ctx, events.ReservationEvent{
		Type:          eventType,
		ReservationID: reservation.ID,
		SchedID:       reservation.SchedID,
		UserID:        reservation.UserID,
		Date:          reservation.Date.Format(constant.DateFormat),
		Status:        req.Status,
	})

	s.invalidateListings(ctx)

	return res, nil
}

// Cancel moves an active reservation to the cancelled terminal status,
// freeing its slot-instance while keeping the audit trail. Owners may
// always cancel their own; administrators may cancel any reservation
// only when the operational override is enabled in configuration.
func (s *serviceImpl) Cancel(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Cancel")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	reservation, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservation")

		return fmt.Errorf("failed to get reservation: %w", err)
	}

	if reservation.ID == constant.Empty {
		return failure.NotFound("reservation not found") // nolint:wrapcheck
	}

	if reservation.UserID != user {
		adminOverride := role == constant.RoleAdministrator && s.cfg.App.AdminCancel
		if !adminOverride {
			return failure.Forbidden("only the reservation owner may cancel it") // nolint:wrapcheck
		}
	}

	if !reservation.IsActive() {
		return failure.InvalidState(fmt.Sprintf("cannot cancel a %s reservation", reservation.Status)) // nolint:wrapcheck
	}

	updatedFields := shared.TransformFields(struct {
		Status string `db:"status"`
	}{Status: model.StatusCancelled}, user)

	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to cancel reservation")

		return fmt.Errorf("failed to cancel reservation: %w", err)
	}

	s.publisher.PublishReservationEvent(ctx, events.ReservationEvent{
		Type:          events.TypeReservationCancelled,
		ReservationID: reservation.ID,
		SchedID:       reservation.SchedID,
		UserID:        reservation.UserID,
		Date:          reservation.Date.Format(constant.DateFormat),
		Status:        model.StatusCancelled,
	})

	s.invalidateListings(ctx)

	return nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	reservation, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservation")

		return res, fmt.Errorf("failed to get reservation: %w", err)
	}

	if reservation.ID == constant.Empty {
		return res, failure.NotFound("reservation not found") // nolint:wrapcheck
	}

	if reservation.UserID != user && role != constant.RoleAdministrator {
		return res, failure.ResourceRestrictedError
	}

	res.FromModel(reservation)

	return res, nil
}

func (s *serviceImpl) GetMine(ctx context.Context, req gDto.QueryParams) (res dto.GetReservationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.GetMine")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldUserID,
				Value:    user,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
		},
	}

	return s.GetAll(ctx, req, filter)
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetReservationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllReservation, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for reservations")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count reservations")

		return res, fmt.Errorf("failed to count reservations: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservations")

		return res, fmt.Errorf("failed to get reservations: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save reservations to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) invalidateListings(ctx context.Context) {
	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllReservation)
		shared.InvalidateCaches(c, s.cache, cacheCountReservation)
	}()
}
