package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	resourceserrors "rentals/internal/resources/errors"
	"rentals/internal/resources/validator"
	apperrors "rentals/pkg/errors"
	"rentals/pkg/logger"
	"rentals/pkg/model"
)

type mockResourceRepository struct {
	createFunc  func(ctx context.Context, res *model.Resource) error
	findFunc    func(ctx context.Context, id string) (*model.Resource, error)
	findAllFunc func(ctx context.Context, limit int, offset int64) ([]*model.Resource, error)
	countFunc   func(ctx context.Context) (int64, error)
}

func (m *mockResourceRepository) Create(ctx context.Context, res *model.Resource) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, res)
	}
	return nil
}

func (m *mockResourceRepository) FindByID(ctx context.Context, id string) (*model.Resource, error) {
	return m.findFunc(ctx, id)
}

func (m *mockResourceRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Resource, error) {
	return m.findAllFunc(ctx, limit, offset)
}

func (m *mockResourceRepository) Count(ctx context.Context) (int64, error) {
	return m.countFunc(ctx)
}

func newTestService(repo *mockResourceRepository) ResourceService {
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.JSON, Output: io.Discard})
	return NewResourceService(repo, validator.NewResourceValidator(log), model.DefaultCleaningBuffer, log)
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name       string
		req        model.ResourceRequest
		wantCode   string
		wantBuffer time.Duration
		wantInv    int
	}{
		{
			name:       "house with default buffer",
			req:        model.ResourceRequest{Kind: model.KindUniqueHouse, Name: "  Sea   View ", Location: "Haifa", BasePrice: 300},
			wantBuffer: 24 * time.Hour,
		},
		{
			name:       "house with explicit buffer",
			req:        model.ResourceRequest{ID: "h1", Kind: model.KindUniqueHouse, Name: "Sea View", Location: "Haifa", CleaningBuffer: "6h"},
			wantBuffer: 6 * time.Hour,
		},
		{
			name:       "house with zero buffer",
			req:        model.ResourceRequest{ID: "h1", Kind: model.KindUniqueHouse, Name: "Sea View", Location: "Haifa", CleaningBuffer: "0s"},
			wantBuffer: 0,
		},
		{
			name:    "center",
			req:     model.ResourceRequest{ID: "c1", Kind: model.KindPropertyCenter, Name: "Harbor Rooms", Location: "Haifa", TotalInventory: 20},
			wantInv: 20,
		},
		{
			name:     "negative buffer",
			req:      model.ResourceRequest{Kind: model.KindUniqueHouse, Name: "Sea View", Location: "Haifa", CleaningBuffer: "-1h"},
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "unparseable buffer",
			req:      model.ResourceRequest{Kind: model.KindUniqueHouse, Name: "Sea View", Location: "Haifa", CleaningBuffer: "a day"},
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "center without inventory",
			req:      model.ResourceRequest{Kind: model.KindPropertyCenter, Name: "Harbor Rooms", Location: "Haifa"},
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "unknown kind",
			req:      model.ResourceRequest{Kind: "boat", Name: "Harbor Rooms", Location: "Haifa"},
			wantCode: apperrors.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stored *model.Resource
			svc := newTestService(&mockResourceRepository{
				createFunc: func(_ context.Context, res *model.Resource) error {
					stored = res
					return nil
				},
			})

			res, err := svc.Create(context.Background(), &tt.req)
			if tt.wantCode != "" {
				if !apperrors.HasCode(err, tt.wantCode) {
					t.Fatalf("expected code %s, got %v", tt.wantCode, err)
				}
				if stored != nil {
					t.Error("invalid resource must not be stored")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.ID == "" {
				t.Error("expected an id")
			}
			if res.CleaningBuffer != tt.wantBuffer || res.TotalInventory != tt.wantInv {
				t.Errorf("unexpected capacity: buffer=%s inventory=%d", res.CleaningBuffer, res.TotalInventory)
			}
			if stored != res {
				t.Error("expected the created resource to be stored")
			}
		})
	}
}

func TestCreate_SanitizesName(t *testing.T) {
	svc := newTestService(&mockResourceRepository{})
	res, err := svc.Create(context.Background(), &model.ResourceRequest{Kind: model.KindUniqueHouse, Name: "  Sea   View ", Location: " Haifa "})
	if err != nil {
		t.Fatal(err)
	}
	if res.Name != "Sea View" || res.Location != "Haifa" {
		t.Errorf("expected normalized strings, got %q %q", res.Name, res.Location)
	}
}

func TestCreate_Duplicate(t *testing.T) {
	svc := newTestService(&mockResourceRepository{
		createFunc: func(_ context.Context, res *model.Resource) error {
			return fmt.Errorf("%w: %s", resourceserrors.ErrAlreadyExists, res.ID)
		},
	})

	_, err := svc.Create(context.Background(), &model.ResourceRequest{ID: "h1", Kind: model.KindUniqueHouse, Name: "Sea View", Location: "Haifa"})
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestGetByID(t *testing.T) {
	svc := newTestService(&mockResourceRepository{
		findFunc: func(_ context.Context, id string) (*model.Resource, error) {
			switch id {
			case "h1":
				return &model.Resource{ID: "h1"}, nil
			case "broken":
				return nil, errors.New("socket closed")
			default:
				return nil, resourceserrors.ErrNotFound
			}
		},
	})

	tests := []struct {
		id       string
		wantCode string
	}{
		{id: "h1"},
		{id: "", wantCode: apperrors.CodeInvalidInput},
		{id: "missing", wantCode: apperrors.CodeNotFound},
		{id: "broken", wantCode: apperrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run("id="+tt.id, func(t *testing.T) {
			_, err := svc.GetByID(context.Background(), tt.id)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("expected code %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestGetAll(t *testing.T) {
	svc := newTestService(&mockResourceRepository{
		findAllFunc: func(_ context.Context, limit int, offset int64) ([]*model.Resource, error) {
			if limit != 10 || offset != 20 {
				t.Errorf("unexpected paging %d/%d", limit, offset)
			}
			return []*model.Resource{{ID: "h1"}}, nil
		},
		countFunc: func(context.Context) (int64, error) { return 21, nil },
	})

	resources, total, err := svc.GetAll(context.Background(), 10, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(resources) != 1 || total != 21 {
		t.Errorf("unexpected result: %d items, total %d", len(resources), total)
	}
}

func TestGetAll_CountError(t *testing.T) {
	svc := newTestService(&mockResourceRepository{
		findAllFunc: func(context.Context, int, int64) ([]*model.Resource, error) { return nil, nil },
		countFunc:   func(context.Context) (int64, error) { return 0, errors.New("timeout") },
	})

	if _, _, err := svc.GetAll(context.Background(), 10, 0); !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}
