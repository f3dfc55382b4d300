package validator

import (
	"errors"
	"io"
	"testing"
	"time"

	"rentals/pkg/logger"
	"rentals/pkg/model"
)

func newTestValidator() *ResourceValidator {
	return NewResourceValidator(logger.New(logger.Config{Level: logger.ERROR, Format: logger.JSON, Output: io.Discard}))
}

func TestValidate(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name      string
		res       model.Resource
		wantField string
	}{
		{
			name: "house",
			res:  model.Resource{ID: "h1", Kind: model.KindUniqueHouse, Name: "Sea View", Location: "Haifa", CleaningBuffer: 24 * time.Hour},
		},
		{
			name: "house without buffer",
			res:  model.Resource{ID: "h1", Kind: model.KindUniqueHouse, Name: "Sea View", Location: "Haifa"},
		},
		{
			name: "center",
			res:  model.Resource{ID: "c1", Kind: model.KindPropertyCenter, Name: "Harbor Rooms", Location: "Haifa", TotalInventory: 12},
		},
		{
			name:      "center without inventory",
			res:       model.Resource{ID: "c1", Kind: model.KindPropertyCenter, Name: "Harbor Rooms", Location: "Haifa"},
			wantField: "TotalInventory",
		},
		{
			name:      "negative buffer",
			res:       model.Resource{ID: "h1", Kind: model.KindUniqueHouse, Name: "Sea View", Location: "Haifa", CleaningBuffer: -time.Hour},
			wantField: "CleaningBuffer",
		},
		{
			name:      "unknown kind",
			res:       model.Resource{ID: "x1", Kind: "boat", Name: "Sea View", Location: "Haifa"},
			wantField: "Kind",
		},
		{
			name:      "short name",
			res:       model.Resource{ID: "h1", Kind: model.KindUniqueHouse, Name: "S", Location: "Haifa"},
			wantField: "Name",
		},
		{
			name:      "negative price",
			res:       model.Resource{ID: "h1", Kind: model.KindUniqueHouse, Name: "Sea View", Location: "Haifa", BasePrice: -1},
			wantField: "BasePrice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.res)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if verrs[0].Field != tt.wantField {
				t.Errorf("expected field %s, got %s", tt.wantField, verrs[0].Field)
			}
		})
	}
}

func TestValidateRequest(t *testing.T) {
	v := newTestValidator()

	if err := v.ValidateRequest(&model.ResourceRequest{Kind: model.KindUniqueHouse, Name: "Sea View", Location: "Haifa"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.ValidateRequest(&model.ResourceRequest{Name: "Sea View", Location: "Haifa"}); err == nil {
		t.Fatal("expected missing kind to fail")
	}
}
