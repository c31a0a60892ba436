package queries_test

import (
	"context"
	"testing"
	"time"

	"github.com/dejobratic/cafepos/internal/orders/app/queries"
	"github.com/dejobratic/cafepos/internal/orders/domain"
)

func TestCheckDiscount(t *testing.T) {
	servedAt := time.Date(2026, 10, 3, 11, 0, 0, 0, time.UTC)

	setup := func(t *testing.T) *inMemoryRepository {
		t.Helper()
		repo := newInMemoryRepository()

		served := newStoredOrder(t, repo, "served", 1, "houseBlend")
		served.MarkServed(servedAt)
		_ = repo.Save(context.Background(), served)

		claimed := newStoredOrder(t, repo, "claimed", 2, "kenya")
		claimed.MarkServed(servedAt)
		_ = repo.Save(context.Background(), claimed)

		claimant := newStoredOrder(t, repo, "claimant", 3, "kenya")
		claimant.ApplyDiscount(claimed)
		_ = repo.Save(context.Background(), claimant)

		return repo
	}

	tests := []struct {
		name  string
		query queries.CheckDiscountQuery
		want  domain.Eligibility
	}{
		{"served and unclaimed", queries.CheckDiscountQuery{OrderNumber: 1}, domain.EligibilityAvailable},
		{"claimed by another order", queries.CheckDiscountQuery{OrderNumber: 2}, domain.EligibilityAlreadyUsed},
		{"claimed by the asking order", queries.CheckDiscountQuery{OrderNumber: 2, ClaimantID: "claimant"}, domain.EligibilityAvailable},
		{"not served yet", queries.CheckDiscountQuery{OrderNumber: 3}, domain.EligibilityUnserved},
		{"unknown number", queries.CheckDiscountQuery{OrderNumber: 404}, domain.EligibilityUnserved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := queries.NewCheckDiscountQueryHandler(setup(t))

			got, err := handler.Handle(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}

	t.Run("rejects non-positive order number", func(t *testing.T) {
		handler := queries.NewCheckDiscountQueryHandler(newInMemoryRepository())

		_, err := handler.Handle(context.Background(), queries.CheckDiscountQuery{OrderNumber: 0})
		if err == nil || err.Error() != "order_number must be positive" {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestStatusBoard(t *testing.T) {
	t.Run("splits orders into preparing and ready", func(t *testing.T) {
		repo := newInMemoryRepository()
		now := time.Now().UTC()
		ctx := context.Background()

		newStoredOrder(t, repo, "a", 4, "kenya")
		newStoredOrder(t, repo, "b", 2, "kenya")

		ready := newStoredOrder(t, repo, "c", 3, "kenya")
		ready.MarkReady(now)
		_ = repo.Save(ctx, ready)

		served := newStoredOrder(t, repo, "d", 1, "kenya")
		served.MarkServed(now)
		_ = repo.Save(ctx, served)

		board, err := queries.NewStatusBoardQueryHandler(repo).Handle(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(board.Preparing) != 2 || board.Preparing[0] != 2 || board.Preparing[1] != 4 {
			t.Errorf("expected preparing [2 4], got %v", board.Preparing)
		}
		if len(board.Ready) != 1 || board.Ready[0] != 3 {
			t.Errorf("expected ready [3], got %v", board.Ready)
		}
	})

	t.Run("empty store yields empty lists", func(t *testing.T) {
		board, err := queries.NewStatusBoardQueryHandler(newInMemoryRepository()).Handle(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if board.Preparing == nil || board.Ready == nil {
			t.Error("expected non-nil lists for JSON rendering")
		}
	})
}
