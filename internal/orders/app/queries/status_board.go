package queries

import (
	"context"
	"fmt"
	"slices"

	"github.com/dejobratic/cafepos/internal/orders/domain"
	"github.com/dejobratic/cafepos/internal/orders/ports"
)

// StatusBoard is what the customer display shows: numbers still brewing and
// numbers waiting at the counter, each ascending.
type StatusBoard struct {
	Preparing []int `json:"preparing"`
	Ready     []int `json:"ready"`
}

type StatusBoardQueryHandler struct {
	repo ports.OrderRepository
}

func NewStatusBoardQueryHandler(repo ports.OrderRepository) *StatusBoardQueryHandler {
	return &StatusBoardQueryHandler{repo: repo}
}

func (h *StatusBoardQueryHandler) Handle(ctx context.Context) (StatusBoard, error) {
	all, err := h.repo.List(ctx, ports.ListFilter{})
	if err != nil {
		return StatusBoard{}, fmt.Errorf("list orders: %w", err)
	}

	board := StatusBoard{Preparing: []int{}, Ready: []int{}}
	for _, o := range all {
		switch o.Status() {
		case domain.StatusPending:
			board.Preparing = append(board.Preparing, o.OrderNumber)
		case domain.StatusReady:
			board.Ready = append(board.Ready, o.OrderNumber)
		}
	}
	slices.Sort(board.Preparing)
	slices.Sort(board.Ready)

	return board, nil
}
