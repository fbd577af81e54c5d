package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/phillip/helping-hands-go/models"
)

func TestMapError(t *testing.T) {
	dupKey := mongo.WriteException{
		WriteErrors: mongo.WriteErrors{
			{Index: 0, Code: 11000, Message: "E11000 duplicate key error collection: users index: uid_1"},
		},
	}

	tests := []struct {
		name     string
		err      error
		wantKind models.Kind
		wantCode string
	}{
		{"no documents", mongo.ErrNoDocuments, models.KindNotFound, models.ErrCodeNotFound},
		{"duplicate key", dupKey, models.KindConflict, models.ErrCodeDuplicateKey},
		{"deadline", fmt.Errorf("server selection: %w", context.DeadlineExceeded), models.KindUnavailable, models.ErrCodeDBUnavailable},
		{"canceled", context.Canceled, models.KindUnavailable, models.ErrCodeDBUnavailable},
		{"client disconnected", mongo.ErrClientDisconnected, models.KindUnavailable, models.ErrCodeDBUnavailable},
		{"other", errors.New("boom"), models.KindInternal, models.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError("op", tt.err)
			if kind := models.KindOf(got); kind != tt.wantKind {
				t.Errorf("kind = %v, want %v", kind, tt.wantKind)
			}
			if code := models.CodeOf(got); code != tt.wantCode {
				t.Errorf("code = %q, want %q", code, tt.wantCode)
			}
			var wex mongo.WriteException
			if errors.As(tt.err, &wex) {
				if !errors.As(got, &wex) {
					t.Errorf("mapped error should wrap the write exception, got %v", got)
				}
				return
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("mapped error should wrap the driver error, got %v", got)
			}
		})
	}
}

func TestMapError_Nil(t *testing.T) {
	if err := mapError("op", nil); err != nil {
		t.Fatalf("mapError(nil) = %v, want nil", err)
	}
}

func TestMapError_KeepsAppErrors(t *testing.T) {
	in := models.NewAlreadyJoinedError()
	got := mapError("op", in)
	if got != error(in) {
		t.Fatalf("mapError should return *models.Error untouched, got %v", got)
	}
}
