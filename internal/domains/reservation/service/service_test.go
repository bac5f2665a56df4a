package service_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"sala/config"
	"sala/infras/otel/mocks"
	reservationMocks "sala/internal/domains/reservation/mocks"
	"sala/internal/domains/reservation/model"
	"sala/internal/domains/reservation/model/dto"
	"sala/internal/domains/reservation/service"
	roomMocks "sala/internal/domains/room/mocks"
	roomModel "sala/internal/domains/room/model"
	scheduleMocks "sala/internal/domains/schedule/mocks"
	scheduleModel "sala/internal/domains/schedule/model"
	eventMocks "sala/internal/events/mocks"
	cacheMocks "sala/shared/cache/mocks"
	"sala/shared/constant"
	gDto "sala/shared/dto"
	"sala/shared/failure"
	"sala/shared/keylock"
	gModel "sala/shared/model"
	"sala/shared/timezone"
)

type reservationFixture struct {
	repo      *reservationMocks.MockReservation
	schedules *scheduleMocks.MockSchedule
	rooms     *roomMocks.MockRoom
	cache     *cacheMocks.MockRedisCache
	publisher *eventMocks.MockPublisher
	svc       service.Reservation
}

func newReservationFixture(t *testing.T, adminCancel bool) *reservationFixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &reservationFixture{
		repo:      reservationMocks.NewMockReservation(ctrl),
		schedules: scheduleMocks.NewMockSchedule(ctrl),
		rooms:     roomMocks.NewMockRoom(ctrl),
		cache:     cacheMocks.NewMockRedisCache(ctrl),
		publisher: eventMocks.NewMockPublisher(ctrl),
	}

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.App.AdminCancel = adminCancel

	// Cache invalidation runs on detached goroutines after mutations.
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.svc = service.New(f.repo, f.schedules, f.rooms, cfg, f.cache, mocks.NewOtel(), keylock.New(), f.publisher)

	return f
}

func callerContext(userID, role string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, userID)

	return context.WithValue(ctx, constant.ContextKeyUserRole, role)
}

func futureDate() string {
	return timezone.Today().AddDate(0, 6, 0).Format(constant.DateFormat)
}

func openRoomAndSchedule(f *reservationFixture) {
	f.schedules.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(scheduleModel.Schedule{ID: "sched-1", RoomID: "room-1", StartTime: "08:00:00", EndTime: "10:00:00"}, nil)

	f.rooms.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(roomModel.Room{ID: "room-1", Status: roomModel.StatusOpen}, nil)
}

func TestReservationService_Create(t *testing.T) {
	t.Run("books a free slot in waiting status", func(t *testing.T) {
		f := newReservationFixture(t, false)

		openRoomAndSchedule(f)
		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
		f.publisher.EXPECT().PublishReservationEvent(gomock.Any(), gomock.Any())

		req := dto.CreateReservationRequest{SchedID: "sched-1", Date: futureDate(), Description: "thesis defense"}

		res, err := f.svc.Create(callerContext("user-1", constant.RoleStudent), req)

		require.NoError(t, err)
		assert.Equal(t, model.StatusWaiting, res.Status)
		assert.Equal(t, "sched-1", res.SchedID)
		assert.Equal(t, req.Date, res.Date)
		assert.Equal(t, "thesis defense", res.Description)
		assert.Equal(t, "user-1", res.UserID)
	})

	t.Run("accepts a booking dated today", func(t *testing.T) {
		f := newReservationFixture(t, false)

		openRoomAndSchedule(f)
		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
		f.publisher.EXPECT().PublishReservationEvent(gomock.Any(), gomock.Any())

		req := dto.CreateReservationRequest{SchedID: "sched-1", Date: timezone.Today().Format(constant.DateFormat)}

		res, err := f.svc.Create(callerContext("user-1", constant.RoleStudent), req)

		require.NoError(t, err)
		assert.Equal(t, model.StatusWaiting, res.Status)
	})

	t.Run("rejects a malformed date", func(t *testing.T) {
		f := newReservationFixture(t, false)

		req := dto.CreateReservationRequest{SchedID: "sched-1", Date: "10-03-2027"}

		_, err := f.svc.Create(callerContext("user-1", constant.RoleStudent), req)

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("rejects a past date", func(t *testing.T) {
		f := newReservationFixture(t, false)

		yesterday := timezone.Today().AddDate(0, 0, -1).Format(constant.DateFormat)
		req := dto.CreateReservationRequest{SchedID: "sched-1", Date: yesterday}

		_, err := f.svc.Create(callerContext("user-1", constant.RoleStudent), req)

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("fails with not found when the schedule is absent", func(t *testing.T) {
		f := newReservationFixture(t, false)

		f.schedules.EXPECT().Get(gomock.Any(), gomock.Any()).Return(scheduleModel.Schedule{}, nil)

		req := dto.CreateReservationRequest{SchedID: "missing", Date: futureDate()}

		_, err := f.svc.Create(callerContext("user-1", constant.RoleStudent), req)

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("conflicts when the room is closed regardless of date", func(t *testing.T) {
		f := newReservationFixture(t, false)

		f.schedules.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(scheduleModel.Schedule{ID: "sched-1", RoomID: "room-1"}, nil)
		f.rooms.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(roomModel.Room{ID: "room-1", Status: roomModel.StatusClosed}, nil)

		req := dto.CreateReservationRequest{SchedID: "sched-1", Date: futureDate()}

		_, err := f.svc.Create(callerContext("user-1", constant.RoleStudent), req)

		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("conflicts when the slot-instance already has an active reservation", func(t *testing.T) {
		f := newReservationFixture(t, false)

		openRoomAndSchedule(f)
		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)

		req := dto.CreateReservationRequest{SchedID: "sched-1", Date: futureDate()}

		_, err := f.svc.Create(callerContext("user-2", constant.RoleLecturer), req)

		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("maps the unique index violation to the same conflict", func(t *testing.T) {
		f := newReservationFixture(t, false)

		openRoomAndSchedule(f)
		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.repo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			Return(&pq.Error{Code: pq.ErrorCode(constant.PqErrorCodeUniqueViolation)})

		req := dto.CreateReservationRequest{SchedID: "sched-1", Date: futureDate()}

		_, err := f.svc.Create(callerContext("user-1", constant.RoleStudent), req)

		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})
}

func TestReservationService_Availability(t *testing.T) {
	future := timezone.Today().AddDate(0, 1, 0)

	t.Run("a free future slot is available", func(t *testing.T) {
		f := newReservationFixture(t, false)

		openRoomAndSchedule(f)
		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		available, err := f.svc.Availability(context.Background(), "sched-1", future)

		require.NoError(t, err)
		assert.True(t, available)
	})

	t.Run("today is available while the slot is free", func(t *testing.T) {
		f := newReservationFixture(t, false)

		openRoomAndSchedule(f)
		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		available, err := f.svc.Availability(context.Background(), "sched-1", timezone.Today())

		require.NoError(t, err)
		assert.True(t, available)
	})

	t.Run("past dates are never available", func(t *testing.T) {
		f := newReservationFixture(t, false)

		available, err := f.svc.Availability(context.Background(), "sched-1", timezone.Today().AddDate(0, 0, -1))

		require.NoError(t, err)
		assert.False(t, available)
	})

	t.Run("a closed room is unavailable", func(t *testing.T) {
		f := newReservationFixture(t, false)

		f.schedules.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(scheduleModel.Schedule{ID: "sched-1", RoomID: "room-1"}, nil)
		f.rooms.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(roomModel.Room{ID: "room-1", Status: roomModel.StatusClosed}, nil)

		available, err := f.svc.Availability(context.Background(), "sched-1", future)

		require.NoError(t, err)
		assert.False(t, available)
	})

	t.Run("an actively reserved slot is unavailable", func(t *testing.T) {
		f := newReservationFixture(t, false)

		openRoomAndSchedule(f)
		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)

		available, err := f.svc.Availability(context.Background(), "sched-1", future)

		require.NoError(t, err)
		assert.False(t, available)
	})

	t.Run("fails with not found when the schedule is absent", func(t *testing.T) {
		f := newReservationFixture(t, false)

		f.schedules.EXPECT().Get(gomock.Any(), gomock.Any()).Return(scheduleModel.Schedule{}, nil)

		_, err := f.svc.Availability(context.Background(), "missing", future)

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

// Two concurrent bookings of the same slot-instance must end with
// exactly one waiting reservation and one conflict.
func TestReservationService_Create_Race(t *testing.T) {
	f := newReservationFixture(t, false)

	var (
		mu    sync.Mutex
		taken bool
	)

	f.schedules.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(scheduleModel.Schedule{ID: "sched-1", RoomID: "room-1"}, nil).
		Times(2)
	f.rooms.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(roomModel.Room{ID: "room-1", Status: roomModel.StatusOpen}, nil).
		Times(2)

	// The slot lock serializes check-then-insert, so the mock state flips
	// exactly once.
	f.repo.EXPECT().
		Exist(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, interface{}) (bool, error) {
			mu.Lock()
			defer mu.Unlock()

			return taken, nil
		}).
		Times(2)
	f.repo.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, model.Reservation) error {
			mu.Lock()
			defer mu.Unlock()
			taken = true

			return nil
		})
	f.publisher.EXPECT().PublishReservationEvent(gomock.Any(), gomock.Any())

	req := dto.CreateReservationRequest{SchedID: "sched-1", Date: futureDate()}

	var wg sync.WaitGroup

	results := make([]error, 2)

	for i := range results {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			_, err := f.svc.Create(callerContext("user-1", constant.RoleStudent), req)
			results[i] = err
		}(i)
	}

	wg.Wait()

	var conflicts, successes int

	for _, err := range results {
		if err == nil {
			successes++

			continue
		}

		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
		conflicts++
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)
}

func TestReservationService_UpdateStatus(t *testing.T) {
	waiting := model.Reservation{
		ID:      "resv-1",
		SchedID: "sched-1",
		UserID:  "user-1",
		Date:    timezone.Today().AddDate(0, 1, 0),
		Status:  model.StatusWaiting,
		Metadata: gModel.Metadata{
			CreatedAt: timezone.Now(),
		},
	}

	t.Run("accepts a waiting reservation", func(t *testing.T) {
		f := newReservationFixture(t, false)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(waiting, nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.publisher.EXPECT().PublishReservationEvent(gomock.Any(), gomock.Any())

		res, err := f.svc.UpdateStatus(
			callerContext("admin-1", constant.RoleAdministrator),
			"resv-1",
			dto.UpdateReservationStatusRequest{Status: model.StatusAccepted},
		)

		require.NoError(t, err)
		assert.Equal(t, model.StatusAccepted, res.Status)
	})

	t.Run("denies a waiting reservation", func(t *testing.T) {
		f := newReservationFixture(t, false)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(waiting, nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.publisher.EXPECT().PublishReservationEvent(gomock.Any(), gomock.Any())

		res, err := f.svc.UpdateStatus(
			callerContext("admin-1", constant.RoleAdministrator),
			"resv-1",
			dto.UpdateReservationStatusRequest{Status: model.StatusDenied},
		)

		require.NoError(t, err)
		assert.Equal(t, model.StatusDenied, res.Status)
	})

	t.Run("forbids non-administrators", func(t *testing.T) {
		f := newReservationFixture(t, false)

		_, err := f.svc.UpdateStatus(
			callerContext("user-1", constant.RoleStudent),
			"resv-1",
			dto.UpdateReservationStatusRequest{Status: model.StatusAccepted},
		)

		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})

	t.Run("rejects transitions from a terminal status", func(t *testing.T) {
		for _, status := range []string{model.StatusAccepted, model.StatusDenied, model.StatusCancelled} {
			f := newReservationFixture(t, false)

			terminal := waiting
			terminal.Status = status

			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(terminal, nil)

			_, err := f.svc.UpdateStatus(
				callerContext("admin-1", constant.RoleAdministrator),
				"resv-1",
				dto.UpdateReservationStatusRequest{Status: model.StatusAccepted},
			)

			require.Error(t, err)
			assert.Equal(t, http.StatusUnprocessableEntity, failure.GetCode(err))
		}
	})

	t.Run("fails with not found when absent", func(t *testing.T) {
		f := newReservationFixture(t, false)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Reservation{}, nil)

		_, err := f.svc.UpdateStatus(
			callerContext("admin-1", constant.RoleAdministrator),
			"missing",
			dto.UpdateReservationStatusRequest{Status: model.StatusDenied},
		)

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestReservationService_Cancel(t *testing.T) {
	owned := func(status string) model.Reservation {
		return model.Reservation{
			ID:      "resv-1",
			SchedID: "sched-1",
			UserID:  "user-1",
			Date:    timezone.Today().AddDate(0, 1, 0),
			Status:  status,
		}
	}

	t.Run("owner cancels a waiting reservation", func(t *testing.T) {
		f := newReservationFixture(t, false)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(owned(model.StatusWaiting), nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.publisher.EXPECT().PublishReservationEvent(gomock.Any(), gomock.Any())

		err := f.svc.Cancel(callerContext("user-1", constant.RoleStudent), "resv-1")

		assert.NoError(t, err)
	})

	t.Run("owner cancels an accepted reservation", func(t *testing.T) {
		f := newReservationFixture(t, false)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(owned(model.StatusAccepted), nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.publisher.EXPECT().PublishReservationEvent(gomock.Any(), gomock.Any())

		err := f.svc.Cancel(callerContext("user-1", constant.RoleLecturer), "resv-1")

		assert.NoError(t, err)
	})

	t.Run("forbids cancelling someone else's reservation", func(t *testing.T) {
		f := newReservationFixture(t, false)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(owned(model.StatusWaiting), nil)

		err := f.svc.Cancel(callerContext("user-2", constant.RoleStudent), "resv-1")

		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})

	t.Run("forbids administrators without the override flag", func(t *testing.T) {
		f := newReservationFixture(t, false)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(owned(model.StatusWaiting), nil)

		err := f.svc.Cancel(callerContext("admin-1", constant.RoleAdministrator), "resv-1")

		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})

	t.Run("admin override cancels any reservation when enabled", func(t *testing.T) {
		f := newReservationFixture(t, true)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(owned(model.StatusAccepted), nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.publisher.EXPECT().PublishReservationEvent(gomock.Any(), gomock.Any())

		err := f.svc.Cancel(callerContext("admin-1", constant.RoleAdministrator), "resv-1")

		assert.NoError(t, err)
	})

	t.Run("rejects cancelling a denied reservation", func(t *testing.T) {
		f := newReservationFixture(t, false)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(owned(model.StatusDenied), nil)

		err := f.svc.Cancel(callerContext("user-1", constant.RoleStudent), "resv-1")

		require.Error(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, failure.GetCode(err))
	})

	t.Run("rejects cancelling twice", func(t *testing.T) {
		f := newReservationFixture(t, false)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(owned(model.StatusCancelled), nil)

		err := f.svc.Cancel(callerContext("user-1", constant.RoleStudent), "resv-1")

		require.Error(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, failure.GetCode(err))
	})
}

func TestReservationService_Get(t *testing.T) {
	stored := model.Reservation{
		ID:          "resv-1",
		SchedID:     "sched-1",
		UserID:      "user-1",
		Date:        time.Date(2027, 3, 10, 0, 0, 0, 0, time.UTC),
		Description: "study group",
		Status:      model.StatusWaiting,
	}

	t.Run("owner reads their reservation back unchanged", func(t *testing.T) {
		f := newReservationFixture(t, false)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)

		res, err := f.svc.Get(callerContext("user-1", constant.RoleStudent), "resv-1")

		require.NoError(t, err)
		assert.Equal(t, "sched-1", res.SchedID)
		assert.Equal(t, "2027-03-10", res.Date)
		assert.Equal(t, "study group", res.Description)
	})

	t.Run("administrator may read any reservation", func(t *testing.T) {
		f := newReservationFixture(t, false)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)

		_, err := f.svc.Get(callerContext("admin-1", constant.RoleAdministrator), "resv-1")

		assert.NoError(t, err)
	})

	t.Run("other users are restricted", func(t *testing.T) {
		f := newReservationFixture(t, false)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)

		_, err := f.svc.Get(callerContext("user-2", constant.RoleStudent), "resv-1")

		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})
}

func TestReservationService_GetMine(t *testing.T) {
	f := newReservationFixture(t, false)

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(2, nil)
	f.repo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]model.Reservation{
			{ID: "resv-1", SchedID: "sched-1", UserID: "user-1", Date: timezone.Today(), Status: model.StatusWaiting},
			{ID: "resv-2", SchedID: "sched-2", UserID: "user-1", Date: timezone.Today(), Status: model.StatusAccepted},
		}, nil)

	res, err := f.svc.GetMine(callerContext("user-1", constant.RoleStudent), gDto.QueryParams{Page: 1, Limit: 10})

	require.NoError(t, err)
	assert.Len(t, res.Reservations, 2)
	assert.Equal(t, 2, res.TotalData)
}
