package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"sala/config"
	"sala/infras/otel"
	"sala/infras/s3"
	"sala/internal/domains/room/model"
	"sala/internal/domains/room/model/dto"
	"sala/internal/domains/room/repository"
	scheduleModel "sala/internal/domains/schedule/model"
	scheduleRepo "sala/internal/domains/schedule/repository"
	tagModel "sala/internal/domains/tag/model"
	tagRepo "sala/internal/domains/tag/repository"
	"sala/shared"
	"sala/shared/cache"
	"sala/shared/constant"
	gDto "sala/shared/dto"
	"sala/shared/failure"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetRoom    = "room:get"
	cacheGetAllRoom = "room:gets"
	cacheCountRoom  = "room:count"
)

type Room interface {
	Create(ctx context.Context, req dto.CreateRoomRequest) (dto.RoomResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetRoomsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.RoomResponse, error)
	Update(ctx context.Context, req dto.UpdateRoomRequest, id string) error
	Delete(ctx context.Context, id string) error
	AttachImage(ctx context.Context, id string, req dto.AttachRoomImageRequest) (dto.RoomResponse, error)
	RemoveImage(ctx context.Context, id string, url string) error
}

type serviceImpl struct {
	repo         repository.Room
	scheduleRepo scheduleRepo.Schedule
	tagRepo      tagRepo.Tag
	cfg          *config.Config
	cache        cache.RedisCache
	otel         otel.Otel
	s3           s3.S3
}

func New(
	repo repository.Room,
	scheduleRepo scheduleRepo.Schedule,
	tagRepo tagRepo.Tag,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	s3 s3.S3,
) Room {
	return &serviceImpl{
		repo:         repo,
		scheduleRepo: scheduleRepo,
		tagRepo:      tagRepo,
		cfg:          cfg,
		cache:        cache,
		otel:         otel,
		s3:           s3,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateRoomRequest) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	if err = s.validateTagIDs(ctx, req.TagIDs); err != nil {
		return res, err
	}

	mod := req.ToModel(user)

	if err = s.repo.Insert(ctx, mod); err != nil {
		log.Error().Err(err).Msg("failed to create room")

		return res, fmt.Errorf("failed to create room: %w", err)
	}

	res.FromModel(mod)

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllRoom)
		shared.InvalidateCaches(c, s.cache, cacheCountRoom)
	}()

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetRoomsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllRoom, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for rooms")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count rooms")

		return res, fmt.Errorf("failed to count rooms: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get rooms")

		return res, fmt.Errorf("failed to get rooms: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save rooms to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountRoom, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count rooms")

		return res, fmt.Errorf("failed to count rooms: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save room count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetRoom, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for room")

		return res, nil
	}

	room, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return res, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return res, failure.NotFound("room not found") // nolint:wrapcheck
	}

	res.FromModel(room)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save room to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateRoomRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	currentRoom, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check room existence")

		return fmt.Errorf("failed to check room existence: %w", err)
	}

	if currentRoom.ID == constant.Empty {
		return failure.NotFound("room not found") // nolint:wrapcheck
	}

	if err = s.validateTagIDs(ctx, req.TagIDs); err != nil {
		return err
	}

	updatedFields := shared.TransformFields(req, user)
	if req.TagIDs != nil {
		updatedFields[model.FieldTagIDs] = pq.Int64Array(req.TagIDs)
	}

	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update room")

		return fmt.Errorf("failed to update room: %w", err)
	}

	s.invalidateRoom(ctx, currentRoom.ID)

	return nil
}

// Delete refuses to remove a room that still owns schedules, since
// reservations reference those schedules by id.
func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if room exists")

		return fmt.Errorf("failed to check if room exists: %w", err)
	}

	if !exist {
		return failure.NotFound("room not found") // nolint:wrapcheck
	}

	scheduleFilter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    scheduleModel.FieldRoomID,
				Value:    id,
				Operator: gDto.FilterOperatorEq,
				Table:    scheduleModel.TableName,
			},
		},
	}

	hasSchedules, err := s.scheduleRepo.Exist(ctx, scheduleFilter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check room schedules")

		return fmt.Errorf("failed to check room schedules: %w", err)
	}

	if hasSchedules {
		return failure.Conflict("room still has schedules; delete them first") // nolint:wrapcheck
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Msg("failed to delete room")

		return fmt.Errorf("failed to delete room: %w", err)
	}

	s.invalidateRoom(ctx, id)

	return nil
}

// AttachImage uploads the photo to blob storage and appends the
// returned URL to the room's photo list. The room only ever stores the
// opaque reference.
func (s *serviceImpl) AttachImage(ctx context.Context, id string, req dto.AttachRoomImageRequest) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.AttachImage")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	room, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return res, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return res, failure.NotFound("room not found") // nolint:wrapcheck
	}

	bucketName := s.cfg.External.S3.BucketName
	filename := uuid.NewString()

	parts := strings.Split(req.Image.Filename, ".")
	if len(parts) > 1 {
		filename = fmt.Sprintf("%s.%s", filename, parts[len(parts)-1])
	}

	url, err := s.s3.UploadFile(ctx, bucketName, model.EntityName, req.ImageFile, req.Image, filename)
	if err != nil {
		log.Error().Err(err).Msg("failed to upload room image")

		return res, fmt.Errorf("failed to upload room image: %w", err)
	}

	room.PhotoURLs = append(room.PhotoURLs, url)

	updatedFields := shared.TransformFields(struct{}{}, user)
	updatedFields[model.FieldPhotoURLs] = room.PhotoURLs

	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to attach room image")

		_ = s.s3.DeleteFile(ctx, bucketName, model.EntityName, filename)

		return res, fmt.Errorf("failed to attach room image: %w", err)
	}

	res.FromModel(room)

	s.invalidateRoom(ctx, id)

	return res, nil
}

func (s *serviceImpl) RemoveImage(ctx context.Context, id string, url string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.RemoveImage")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	room, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return failure.NotFound("room not found") // nolint:wrapcheck
	}

	idx := slices.Index([]string(room.PhotoURLs), url)
	if idx == -1 {
		return failure.NotFound("room image not found") // nolint:wrapcheck
	}

	room.PhotoURLs = slices.Delete([]string(room.PhotoURLs), idx, idx+1)

	updatedFields := shared.TransformFields(struct{}{}, user)
	updatedFields[model.FieldPhotoURLs] = pq.StringArray(room.PhotoURLs)

	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to remove room image")

		return fmt.Errorf("failed to remove room image: %w", err)
	}

	bucketName := s.cfg.External.S3.BucketName

	objectName := s.s3.GetObjectNameFromURL(bucketName, url)
	if objectName != constant.Empty {
		_ = s.s3.DeleteFile(ctx, bucketName, model.EntityName, objectName)
	}

	s.invalidateRoom(ctx, id)

	return nil
}

func (s *serviceImpl) validateTagIDs(ctx context.Context, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}

	unique := make([]int64, 0, len(tagIDs))
	seen := map[int64]struct{}{}

	for _, tagID := range tagIDs {
		if _, ok := seen[tagID]; ok {
			continue
		}

		seen[tagID] = struct{}{}
		unique = append(unique, tagID)
	}

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    tagModel.FieldID,
				Value:    unique,
				Operator: gDto.FilterOperatorIn,
				Table:    tagModel.TableName,
			},
		},
	}

	count, err := s.tagRepo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count tags by ids")

		return fmt.Errorf("failed to count tags by ids: %w", err)
	}

	if count != len(unique) {
		return failure.BadRequestFromString("one or more tag ids do not exist")
	}

	return nil
}

func (s *serviceImpl) invalidateRoom(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetRoom, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete room cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllRoom)
		shared.InvalidateCaches(c, s.cache, cacheCountRoom)
	}()
}
