package services_test

import (
	"context"
	"testing"

	"slidecast/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, 42)
	ctx = services.WithStage(ctx, "clips")
	ctx = services.WithRequestID(ctx, "req-123")
	ctx = services.WithSlideIndex(ctx, 3)

	if id, ok := services.RunIDFromContext(ctx); !ok || id != 42 {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "clips" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
	if idx, ok := services.SlideIndexFromContext(ctx); !ok || idx != 3 {
		t.Fatalf("unexpected slide index: %v %v", idx, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	ctx = services.WithSlideIndex(ctx, -1)
	if _, ok := services.SlideIndexFromContext(ctx); ok {
		t.Fatal("expected no slide index for negative value")
	}
}
