package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/greenaudit/greenaudit/internal/model"
)

func TestMemoryRepository_SaveGetUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	report := model.NewReport("r1", "report.pdf")
	if err := repo.Save(ctx, report); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != model.StatusPending || got.Filename != "report.pdf" {
		t.Errorf("unexpected report: %+v", got)
	}

	got.Status = model.StatusProcessing
	if err := repo.Update(ctx, "r1", got); err != nil {
		t.Fatalf("Update: %v", err)
	}

	again, err := repo.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if again.Status != model.StatusProcessing {
		t.Errorf("Status = %q, want processing", again.Status)
	}
}

func TestMemoryRepository_GetUnknown(t *testing.T) {
	repo := NewMemoryRepository()
	if _, err := repo.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryRepository_UpdateUnknown(t *testing.T) {
	repo := NewMemoryRepository()
	report := model.NewReport("ghost", "x.pdf")
	if err := repo.Update(context.Background(), "ghost", report); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryRepository_SnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	report := model.NewReport("r1", "report.pdf")
	report.Claims = []model.EnvironmentalClaim{{Description: "original"}}
	if err := repo.Save(ctx, report); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	report.Claims[0].Description = "mutated"
	report.Status = model.StatusFailed

	got, err := repo.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Claims[0].Description != "original" {
		t.Errorf("stored claim mutated: %q", got.Claims[0].Description)
	}
	if got.Status != model.StatusPending {
		t.Errorf("stored status mutated: %q", got.Status)
	}
}

func TestMemoryRepository_ConcurrentReadersSingleWriter(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	report := model.NewReport("r1", "report.pdf")
	if err := repo.Save(ctx, report); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})

	// Readers poll status while the writer advances it.
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				got, err := repo.Get(ctx, "r1")
				if err != nil {
					t.Errorf("Get: %v", err)
					return
				}
				switch got.Status {
				case model.StatusPending, model.StatusProcessing, model.StatusCompleted:
				default:
					t.Errorf("observed invalid status %q", got.Status)
					return
				}
			}
		}()
	}

	for _, status := range []model.ReportStatus{model.StatusProcessing, model.StatusCompleted} {
		report.Status = status
		if err := repo.Update(ctx, "r1", report); err != nil {
			t.Errorf("Update: %v", err)
		}
	}
	close(stop)
	wg.Wait()
}
