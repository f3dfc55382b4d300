package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	resourceserrors "rentals/internal/resources/errors"
	"rentals/internal/resources/repository"
	"rentals/internal/resources/validator"
	apperrors "rentals/pkg/errors"
	"rentals/pkg/logger"
	"rentals/pkg/model"
	"rentals/pkg/sanitizer"
)

type ResourceService interface {
	Create(ctx context.Context, req *model.ResourceRequest) (*model.Resource, error)
	GetByID(ctx context.Context, id string) (*model.Resource, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Resource, int64, error)
}

type resourceService struct {
	repo          repository.ResourceRepository
	validator     *validator.ResourceValidator
	defaultBuffer time.Duration
	log           *logger.Logger
}

func NewResourceService(
	repo repository.ResourceRepository,
	validator *validator.ResourceValidator,
	defaultBuffer time.Duration,
	log *logger.Logger,
) ResourceService {
	return &resourceService{
		repo:          repo,
		validator:     validator,
		defaultBuffer: defaultBuffer,
		log:           log,
	}
}

func (s *resourceService) Create(ctx context.Context, req *model.ResourceRequest) (*model.Resource, error) {
	s.sanitize(req)
	if err := s.validator.ValidateRequest(req); err != nil {
		return nil, s.validationFailed(req, err)
	}

	res, err := s.build(req)
	if err != nil {
		return nil, s.validationFailed(req, err)
	}
	if err := s.validator.Validate(res); err != nil {
		return nil, s.validationFailed(req, err)
	}

	if err := s.repo.Create(ctx, res); err != nil {
		if errors.Is(err, resourceserrors.ErrAlreadyExists) {
			return nil, apperrors.Conflict(fmt.Sprintf("Resource %s already exists", res.ID))
		}
		s.log.Error("Failed to create resource", "id", res.ID, "error", err)
		return nil, apperrors.Internal("Failed to create resource", err)
	}

	s.log.Info("Resource created successfully",
		"id", res.ID,
		"kind", res.Kind,
		"name", res.Name,
		"location", res.Location,
	)
	return res, nil
}

func (s *resourceService) GetByID(ctx context.Context, id string) (*model.Resource, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Resource ID cannot be empty")
	}

	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, resourceserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Resource", id)
		}
		return nil, apperrors.Internal("Failed to retrieve resource", err)
	}
	return res, nil
}

func (s *resourceService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Resource, int64, error) {
	var count int64
	var resources []*model.Resource
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
	}()

	go func() {
		defer wg.Done()
		resources, errFind = s.repo.FindAll(ctx, limit, offset)
	}()

	wg.Wait()
	if errCount != nil {
		s.log.Error("Failed to count resources", "error", errCount)
		return nil, 0, apperrors.Internal("Failed to count resources", errCount)
	}
	if errFind != nil {
		s.log.Error("Failed to list resources", "error", errFind)
		return nil, 0, apperrors.Internal("Failed to retrieve resources", errFind)
	}
	return resources, count, nil
}

// build applies the kind-specific constructor so capacity rules hold.
func (s *resourceService) build(req *model.ResourceRequest) (*model.Resource, error) {
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	switch req.Kind {
	case model.KindUniqueHouse:
		buffer := s.defaultBuffer
		if req.CleaningBuffer != "" {
			parsed, err := time.ParseDuration(req.CleaningBuffer)
			if err != nil {
				return nil, validator.ValidationErrors{{Field: "CleaningBuffer", Message: "cleaning_buffer must be a duration such as 24h"}}
			}
			buffer = parsed
		}
		return model.NewUniqueHouse(id, req.Name, req.Location, req.BasePrice, buffer)
	case model.KindPropertyCenter:
		return model.NewPropertyCenter(id, req.Name, req.Location, req.BasePrice, req.TotalInventory)
	default:
		return nil, fmt.Errorf("%w: unknown resource kind %q", model.ErrInvalidCapacity, req.Kind)
	}
}

func (s *resourceService) sanitize(req *model.ResourceRequest) {
	req.ID = sanitizer.NormalizeID(req.ID)
	req.Name = sanitizer.NormalizeName(req.Name)
	req.Location = sanitizer.NormalizeLocation(req.Location)
}

func (s *resourceService) validationFailed(req *model.ResourceRequest, err error) error {
	s.log.Warn("Resource validation failed",
		"name", req.Name,
		"kind", req.Kind,
		"error", err,
	)
	return apperrors.Validation("Resource validation failed", map[string]any{
		"error": err.Error(),
	})
}
