package service_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"sala/config"
	"sala/infras/otel/mocks"
	reservationMocks "sala/internal/domains/reservation/mocks"
	reservationModel "sala/internal/domains/reservation/model"
	roomMocks "sala/internal/domains/room/mocks"
	scheduleMocks "sala/internal/domains/schedule/mocks"
	"sala/internal/domains/schedule/model"
	"sala/internal/domains/schedule/model/dto"
	"sala/internal/domains/schedule/service"
	cacheMocks "sala/shared/cache/mocks"
	"sala/shared/constant"
	gDto "sala/shared/dto"
	"sala/shared/failure"
)

type scheduleFixture struct {
	repo         *scheduleMocks.MockSchedule
	rooms        *roomMocks.MockRoom
	reservations *reservationMocks.MockReservation
	svc          service.Schedule
}

func newScheduleFixture(t *testing.T) *scheduleFixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &scheduleFixture{
		repo:         scheduleMocks.NewMockSchedule(ctrl),
		rooms:        roomMocks.NewMockRoom(ctrl),
		reservations: reservationMocks.NewMockReservation(ctrl),
	}

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.svc = service.New(f.repo, f.rooms, f.reservations, cfg, mockCache, mocks.NewOtel())

	return f
}

func adminContext() context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-1")

	return context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleAdministrator)
}

func TestScheduleService_Create(t *testing.T) {
	t.Run("creates a daily slot on an existing room", func(t *testing.T) {
		f := newScheduleFixture(t)

		f.rooms.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

		req := dto.CreateScheduleRequest{
			RoomID:    "0b18b838-8fd7-4902-a018-b41fa0d1ff00",
			StartTime: "08:00:00",
			EndTime:   "10:00:00",
		}

		res, err := f.svc.Create(adminContext(), req)

		require.NoError(t, err)
		assert.Equal(t, "08:00:00", res.StartTime)
		assert.Equal(t, "10:00:00", res.EndTime)
		assert.False(t, res.IsReserved)
	})

	t.Run("rejects start at or after end", func(t *testing.T) {
		for _, boundary := range [][2]string{
			{"10:00:00", "08:00:00"},
			{"10:00:00", "10:00:00"},
		} {
			f := newScheduleFixture(t)

			req := dto.CreateScheduleRequest{RoomID: "room-1", StartTime: boundary[0], EndTime: boundary[1]}

			_, err := f.svc.Create(adminContext(), req)

			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
		}
	})

	t.Run("fails with not found for a missing room", func(t *testing.T) {
		f := newScheduleFixture(t)

		f.rooms.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		req := dto.CreateScheduleRequest{RoomID: "room-x", StartTime: "08:00:00", EndTime: "10:00:00"}

		_, err := f.svc.Create(adminContext(), req)

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestScheduleService_Get(t *testing.T) {
	stored := model.Schedule{ID: "sched-1", RoomID: "room-1", StartTime: "08:00:00", EndTime: "10:00:00"}

	t.Run("derives isReserved from the active reservation set", func(t *testing.T) {
		f := newScheduleFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)
		f.reservations.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]reservationModel.Reservation{
				{ID: "resv-1", SchedID: "sched-1", Status: reservationModel.StatusAccepted},
			}, nil)

		res, err := f.svc.Get(adminContext(), "sched-1", "2027-03-10")

		require.NoError(t, err)
		assert.True(t, res.IsReserved)
	})

	t.Run("reports a free slot-instance as not reserved", func(t *testing.T) {
		f := newScheduleFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)
		f.reservations.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]reservationModel.Reservation{}, nil)

		res, err := f.svc.Get(adminContext(), "sched-1", "2027-03-10")

		require.NoError(t, err)
		assert.False(t, res.IsReserved)
	})

	t.Run("rejects a malformed inspection date", func(t *testing.T) {
		f := newScheduleFixture(t)

		_, err := f.svc.Get(adminContext(), "sched-1", "03/10/2027")

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("fails with not found when absent", func(t *testing.T) {
		f := newScheduleFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Schedule{}, nil)

		_, err := f.svc.Get(adminContext(), "missing", "")

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestScheduleService_Delete(t *testing.T) {
	t.Run("deletes a schedule with no active reservations", func(t *testing.T) {
		f := newScheduleFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.reservations.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

		err := f.svc.Delete(adminContext(), "sched-1")

		assert.NoError(t, err)
	})

	t.Run("conflicts while active reservations reference it", func(t *testing.T) {
		f := newScheduleFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.reservations.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)

		err := f.svc.Delete(adminContext(), "sched-1")

		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("fails with not found when absent", func(t *testing.T) {
		f := newScheduleFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		err := f.svc.Delete(adminContext(), "missing")

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestScheduleService_BookedDates(t *testing.T) {
	f := newScheduleFixture(t)

	f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	f.reservations.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]reservationModel.Reservation{
			{ID: "resv-1", SchedID: "sched-1", Date: time.Date(2027, 3, 10, 0, 0, 0, 0, time.UTC), Status: reservationModel.StatusWaiting},
			{ID: "resv-2", SchedID: "sched-1", Date: time.Date(2027, 3, 12, 0, 0, 0, 0, time.UTC), Status: reservationModel.StatusAccepted},
		}, nil)

	res, err := f.svc.BookedDates(adminContext(), "sched-1")

	require.NoError(t, err)
	assert.Equal(t, "sched-1", res.SchedID)
	assert.Equal(t, []string{"2027-03-10", "2027-03-12"}, res.Dates)
}

func TestScheduleService_GetAll(t *testing.T) {
	f := newScheduleFixture(t)

	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(2, nil)
	f.repo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]model.Schedule{
			{ID: "sched-1", RoomID: "room-1", StartTime: "08:00:00", EndTime: "10:00:00"},
			{ID: "sched-2", RoomID: "room-1", StartTime: "10:00:00", EndTime: "12:00:00"},
		}, nil)
	f.reservations.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]reservationModel.Reservation{
			{ID: "resv-1", SchedID: "sched-2", Status: reservationModel.StatusWaiting},
		}, nil)

	res, err := f.svc.GetAll(adminContext(), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{}, "2027-03-10")

	require.NoError(t, err)
	require.Len(t, res.Schedules, 2)
	assert.False(t, res.Schedules[0].IsReserved)
	assert.True(t, res.Schedules[1].IsReserved)
	assert.Equal(t, 2, res.TotalData)
}
