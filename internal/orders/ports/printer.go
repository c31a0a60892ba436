package ports

import (
	"context"

	"github.com/dejobratic/cafepos/internal/orders/domain"
)

// ReceiptPrinter prints receipts and cup labels.
type ReceiptPrinter interface {
	Print(ctx context.Context, receipt domain.Receipt) error
}
