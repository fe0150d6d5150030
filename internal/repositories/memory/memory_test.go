package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rahulbrandimpetus/wheelspin-backend/internal/models"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/repositories"
)

func TestPrizeRepository(t *testing.T) {
	ctx := context.Background()
	seed := []*models.Prize{
		{ID: "grand", Label: "Grand", Weight: 0.2, Cap: models.IntPtr(2), Remaining: models.IntPtr(2)},
		{ID: "thanks", Label: "Thanks", Weight: 0.8},
	}
	repo := NewPrizeRepository(seed)

	t.Run("snapshots are copies", func(t *testing.T) {
		prizes, _ := repo.LoadAll(ctx)
		*prizes[0].Remaining = 0
		again, _ := repo.LoadAll(ctx)
		if *again[0].Remaining != 2 {
			t.Error("caller mutation leaked into the store")
		}
		*seed[0].Remaining = 0
		again, _ = repo.LoadAll(ctx)
		if *again[0].Remaining != 2 {
			t.Error("seed mutation leaked into the store")
		}
	})

	t.Run("version guarded writes", func(t *testing.T) {
		update := models.CounterUpdate{Remaining: models.IntPtr(1), TotalDistributed: 1, UpdatedAt: time.Now(), ExpectedVersion: 0}
		if err := repo.WriteCounters(ctx, "grand", update); err != nil {
			t.Fatalf("WriteCounters: %v", err)
		}
		if err := repo.WriteCounters(ctx, "grand", update); !errors.Is(err, repositories.ErrStaleCounter) {
			t.Errorf("stale write error = %v", err)
		}
		if err := repo.WriteCounters(ctx, "missing", update); !errors.Is(err, repositories.ErrNotFound) {
			t.Errorf("missing prize error = %v", err)
		}
		prizes, _ := repo.LoadAll(ctx)
		if *prizes[0].Remaining != 1 || prizes[0].TotalDistributed != 1 || prizes[0].Version != 1 {
			t.Errorf("grand = %+v", prizes[0])
		}
	})

	t.Run("reset", func(t *testing.T) {
		if err := repo.ResetAll(ctx, time.Now()); err != nil {
			t.Fatal(err)
		}
		prizes, _ := repo.LoadAll(ctx)
		if *prizes[0].Remaining != 2 || prizes[0].TotalDistributed != 1 || prizes[1].Remaining != nil {
			t.Errorf("after reset = %+v, %+v", prizes[0], prizes[1])
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := repo.LoadAll(cctx); !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v", err)
		}
	})
}

func TestParticipantRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewParticipantRepository()

	if _, err := repo.FindByIdentity(ctx, "15550100123"); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	p, err := repo.Create(ctx, "15550100123")
	if err != nil {
		t.Fatal(err)
	}
	if again, _ := repo.Create(ctx, "15550100123"); !again.CreatedAt.Equal(p.CreatedAt) {
		t.Error("Create replaced an existing participant")
	}

	marker := models.AwardMarker{Label: "Grand", Date: "2024-03-09", Number: 1}
	if err := repo.RecordAward(ctx, p.ID, marker); err != nil {
		t.Fatal(err)
	}
	if err := repo.RecordAward(ctx, p.ID, models.AwardMarker{Label: "Other"}); !errors.Is(err, repositories.ErrAlreadyRecorded) {
		t.Errorf("second RecordAward error = %v", err)
	}
	got, _ := repo.FindByIdentity(ctx, "15550100123")
	if !got.HasPlayed || *got.Award != marker {
		t.Errorf("participant = %+v", got)
	}
}
