package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"sala/config"
	"sala/infras/otel/mocks"
	tagMocks "sala/internal/domains/tag/mocks"
	"sala/internal/domains/tag/model"
	"sala/internal/domains/tag/model/dto"
	"sala/internal/domains/tag/service"
	cacheMocks "sala/shared/cache/mocks"
	gDto "sala/shared/dto"
	"sala/shared/failure"
)

type tagFixture struct {
	repo  *tagMocks.MockTag
	cache *cacheMocks.MockRedisCache
	svc   service.Tag
}

func newTagFixture(t *testing.T) *tagFixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &tagFixture{
		repo:  tagMocks.NewMockTag(ctrl),
		cache: cacheMocks.NewMockRedisCache(ctrl),
	}

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.svc = service.New(f.repo, cfg, f.cache, mocks.NewOtel())

	return f
}

func TestTagService_Create(t *testing.T) {
	t.Run("creates a tag and returns the assigned id", func(t *testing.T) {
		f := newTagFixture(t)

		f.repo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, mod model.Tag) (int, error) {
				assert.Equal(t, "projector", mod.Name)

				return 7, nil
			})

		res, err := f.svc.Create(context.Background(), dto.CreateTagRequest{Name: "projector"})

		require.NoError(t, err)
		assert.Equal(t, 7, res.ID)
		assert.Equal(t, "projector", res.Name)
	})

	t.Run("repository error", func(t *testing.T) {
		f := newTagFixture(t)

		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(0, errors.New("database error"))

		_, err := f.svc.Create(context.Background(), dto.CreateTagRequest{Name: "projector"})

		assert.Error(t, err)
	})
}

func TestTagService_Get(t *testing.T) {
	t.Run("returns a stored tag", func(t *testing.T) {
		f := newTagFixture(t)

		f.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Tag{ID: 7, Name: "projector"}, nil)

		res, err := f.svc.Get(context.Background(), 7)

		require.NoError(t, err)
		assert.Equal(t, "projector", res.Name)
	})

	t.Run("fails with not found when absent", func(t *testing.T) {
		f := newTagFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Tag{}, nil)

		_, err := f.svc.Get(context.Background(), 99)

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestTagService_GetAll(t *testing.T) {
	t.Run("lists tags on a cache miss", func(t *testing.T) {
		f := newTagFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
		f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(2, nil)
		f.repo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]model.Tag{{ID: 1, Name: "projector"}, {ID: 2, Name: "whiteboard"}}, nil)

		res, err := f.svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{})

		require.NoError(t, err)
		assert.Len(t, res.Tags, 2)
		assert.Equal(t, 2, res.TotalData)
	})
}

func TestTagService_Update(t *testing.T) {
	t.Run("renames a tag", func(t *testing.T) {
		f := newTagFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, "beamer", fields[model.FieldName])

				return nil
			})

		err := f.svc.Update(context.Background(), dto.UpdateTagRequest{Name: "beamer"}, 7)

		assert.NoError(t, err)
	})

	t.Run("fails with not found when absent", func(t *testing.T) {
		f := newTagFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		err := f.svc.Update(context.Background(), dto.UpdateTagRequest{Name: "beamer"}, 99)

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestTagService_Delete(t *testing.T) {
	t.Run("deletes a stored tag", func(t *testing.T) {
		f := newTagFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

		err := f.svc.Delete(context.Background(), 7)

		assert.NoError(t, err)
	})

	t.Run("fails with not found when absent", func(t *testing.T) {
		f := newTagFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		err := f.svc.Delete(context.Background(), 99)

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}
