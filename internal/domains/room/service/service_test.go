package service_test

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"sala/config"
	"sala/infras/otel/mocks"
	s3Mocks "sala/infras/s3/mocks"
	roomMocks "sala/internal/domains/room/mocks"
	"sala/internal/domains/room/model"
	"sala/internal/domains/room/model/dto"
	"sala/internal/domains/room/service"
	scheduleMocks "sala/internal/domains/schedule/mocks"
	tagMocks "sala/internal/domains/tag/mocks"
	cacheMocks "sala/shared/cache/mocks"
	"sala/shared/constant"
	gDto "sala/shared/dto"
	"sala/shared/failure"
)

type roomFixture struct {
	repo      *roomMocks.MockRoom
	schedules *scheduleMocks.MockSchedule
	tags      *tagMocks.MockTag
	cache     *cacheMocks.MockRedisCache
	s3        *s3Mocks.MockS3
	svc       service.Room
}

func newRoomFixture(t *testing.T) *roomFixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &roomFixture{
		repo:      roomMocks.NewMockRoom(ctrl),
		schedules: scheduleMocks.NewMockSchedule(ctrl),
		tags:      tagMocks.NewMockTag(ctrl),
		cache:     cacheMocks.NewMockRedisCache(ctrl),
		s3:        s3Mocks.NewMockS3(ctrl),
	}

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.External.S3.BucketName = "sala-photos"

	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.svc = service.New(f.repo, f.schedules, f.tags, cfg, f.cache, mocks.NewOtel(), f.s3)

	return f
}

func adminContext() context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-1")

	return context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleAdministrator)
}

func TestRoomService_Create(t *testing.T) {
	t.Run("creates an open room with existing tags", func(t *testing.T) {
		f := newRoomFixture(t)

		f.tags.EXPECT().Count(gomock.Any(), gomock.Any()).Return(2, nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

		req := dto.CreateRoomRequest{
			Name:     "Physics Lab",
			RoomType: model.RoomTypeLaboratory,
			TagIDs:   []int64{1, 2},
		}

		res, err := f.svc.Create(adminContext(), req)

		require.NoError(t, err)
		assert.Equal(t, model.StatusOpen, res.Status)
		assert.Equal(t, model.RoomTypeLaboratory, res.RoomType)
		assert.Equal(t, []int64{1, 2}, res.TagIDs)
		assert.NotEmpty(t, res.ID)
	})

	t.Run("rejects dangling tag references", func(t *testing.T) {
		f := newRoomFixture(t)

		f.tags.EXPECT().Count(gomock.Any(), gomock.Any()).Return(1, nil)

		req := dto.CreateRoomRequest{
			Name:     "Physics Lab",
			RoomType: model.RoomTypeLaboratory,
			TagIDs:   []int64{1, 99},
		}

		_, err := f.svc.Create(adminContext(), req)

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("repository error", func(t *testing.T) {
		f := newRoomFixture(t)

		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("database error"))

		req := dto.CreateRoomRequest{Name: "Aula", RoomType: model.RoomTypeTheater}

		_, err := f.svc.Create(adminContext(), req)

		assert.Error(t, err)
	})
}

func TestRoomService_Get(t *testing.T) {
	t.Run("returns a stored room", func(t *testing.T) {
		f := newRoomFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
		f.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Room{
				ID:       "room-1",
				Name:     "Physics Lab",
				RoomType: model.RoomTypeLaboratory,
				Status:   model.StatusOpen,
				TagIDs:   pq.Int64Array{1, 2},
			}, nil)

		res, err := f.svc.Get(adminContext(), "room-1")

		require.NoError(t, err)
		assert.Equal(t, "Physics Lab", res.Name)
		assert.Equal(t, []int64{1, 2}, res.TagIDs)
		assert.Equal(t, []string{}, res.PhotoURLs)
	})

	t.Run("fails with not found when absent", func(t *testing.T) {
		f := newRoomFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{}, nil)

		_, err := f.svc.Get(adminContext(), "missing")

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestRoomService_Update(t *testing.T) {
	stored := model.Room{ID: "room-1", Name: "Physics Lab", RoomType: model.RoomTypeLaboratory, Status: model.StatusOpen}

	t.Run("closes a room without touching reservations", func(t *testing.T) {
		f := newRoomFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)
		f.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, model.StatusClosed, fields[model.FieldStatus])

				return nil
			})

		err := f.svc.Update(adminContext(), dto.UpdateRoomRequest{Status: model.StatusClosed}, "room-1")

		assert.NoError(t, err)
	})

	t.Run("replaces tags after validating them", func(t *testing.T) {
		f := newRoomFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)
		f.tags.EXPECT().Count(gomock.Any(), gomock.Any()).Return(1, nil)
		f.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, pq.Int64Array{3}, fields[model.FieldTagIDs])

				return nil
			})

		err := f.svc.Update(adminContext(), dto.UpdateRoomRequest{TagIDs: []int64{3}}, "room-1")

		assert.NoError(t, err)
	})

	t.Run("fails with not found when absent", func(t *testing.T) {
		f := newRoomFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{}, nil)

		err := f.svc.Update(adminContext(), dto.UpdateRoomRequest{Name: "Renamed"}, "missing")

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestRoomService_Delete(t *testing.T) {
	t.Run("deletes a room with no schedules", func(t *testing.T) {
		f := newRoomFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.schedules.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

		err := f.svc.Delete(adminContext(), "room-1")

		assert.NoError(t, err)
	})

	t.Run("conflicts while schedules still reference the room", func(t *testing.T) {
		f := newRoomFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.schedules.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)

		err := f.svc.Delete(adminContext(), "room-1")

		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})
}

func TestRoomService_AttachImage(t *testing.T) {
	stored := model.Room{ID: "room-1", Name: "Physics Lab", RoomType: model.RoomTypeLaboratory, Status: model.StatusOpen}

	t.Run("uploads the photo and appends its url", func(t *testing.T) {
		f := newRoomFixture(t)

		uploadedURL := "https://cdn.example.com/sala-photos/room/uploaded.png"

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)
		f.s3.EXPECT().
			UploadFile(gomock.Any(), "sala-photos", model.EntityName, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(uploadedURL, nil)
		f.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Contains(t, fields[model.FieldPhotoURLs], uploadedURL)

				return nil
			})

		req := dto.AttachRoomImageRequest{Image: &multipart.FileHeader{Filename: "photo.png"}}

		res, err := f.svc.AttachImage(adminContext(), "room-1", req)

		require.NoError(t, err)
		assert.Contains(t, res.PhotoURLs, uploadedURL)
	})

	t.Run("removes the uploaded object when the update fails", func(t *testing.T) {
		f := newRoomFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)
		f.s3.EXPECT().
			UploadFile(gomock.Any(), "sala-photos", model.EntityName, gomock.Any(), gomock.Any(), gomock.Any()).
			Return("https://cdn.example.com/sala-photos/room/uploaded.png", nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("database error"))
		f.s3.EXPECT().DeleteFile(gomock.Any(), "sala-photos", model.EntityName, gomock.Any()).Return(nil)

		req := dto.AttachRoomImageRequest{Image: &multipart.FileHeader{Filename: "photo.png"}}

		_, err := f.svc.AttachImage(adminContext(), "room-1", req)

		assert.Error(t, err)
	})
}

func TestRoomService_RemoveImage(t *testing.T) {
	stored := model.Room{
		ID:        "room-1",
		Name:      "Physics Lab",
		RoomType:  model.RoomTypeLaboratory,
		Status:    model.StatusOpen,
		PhotoURLs: pq.StringArray{"https://cdn.example.com/sala-photos/room/a.png"},
	}

	t.Run("removes the reference and the stored object", func(t *testing.T) {
		f := newRoomFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)
		f.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, pq.StringArray{}, fields[model.FieldPhotoURLs])

				return nil
			})
		f.s3.EXPECT().
			GetObjectNameFromURL("sala-photos", "https://cdn.example.com/sala-photos/room/a.png").
			Return("a.png")
		f.s3.EXPECT().DeleteFile(gomock.Any(), "sala-photos", model.EntityName, "a.png").Return(nil)

		err := f.svc.RemoveImage(adminContext(), "room-1", "https://cdn.example.com/sala-photos/room/a.png")

		assert.NoError(t, err)
	})

	t.Run("fails with not found for an unknown url", func(t *testing.T) {
		f := newRoomFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)

		err := f.svc.RemoveImage(adminContext(), "room-1", "https://cdn.example.com/sala-photos/room/other.png")

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}
