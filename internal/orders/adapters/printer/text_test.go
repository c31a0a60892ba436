package printer_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dejobratic/cafepos/internal/orders/adapters/printer"
	"github.com/dejobratic/cafepos/internal/orders/domain"
)

func sampleReceipt() domain.Receipt {
	return domain.Receipt{
		OrderNumber: 12,
		IssuedAt:    time.Date(2026, 10, 3, 9, 30, 0, 0, time.UTC),
		Lines: []domain.ReceiptLine{
			{Name: "Kenya", Price: 500},
			{Name: "Cookie", Price: 200},
		},
		Total:          700,
		Discount:       100,
		BillingAmount:  600,
		ReceivedAmount: 1000,
		Charge:         400,
		Labels: []domain.CupLabel{
			{OrderNumber: 12, Seq: 1, Of: 1, Name: "Kenya", Assignee: "mika"},
		},
	}
}

func TestTextPrinter(t *testing.T) {
	t.Run("renders lines amounts and labels", func(t *testing.T) {
		var out bytes.Buffer
		p := printer.NewTextPrinter(&out)

		if err := p.Print(context.Background(), sampleReceipt()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		text := out.String()
		for _, want := range []string{"ORDER #12", "2026-10-03 09:30", "Kenya", "Cookie", "-100", "600", "400", "--- #12  1/1  Kenya  (mika)"} {
			if !strings.Contains(text, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, text)
			}
		}
	})

	t.Run("omits discount line when there is none", func(t *testing.T) {
		r := sampleReceipt()
		r.Discount = 0
		var out bytes.Buffer
		printer.Render(&out, r)

		if strings.Contains(out.String(), "discount") {
			t.Errorf("expected no discount line, got:\n%s", out.String())
		}
	})

	t.Run("cancelled context prints nothing", func(t *testing.T) {
		var out bytes.Buffer
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := printer.NewTextPrinter(&out).Print(ctx, sampleReceipt())
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if out.Len() != 0 {
			t.Errorf("expected empty output, got %q", out.String())
		}
	})

	t.Run("wraps writer errors", func(t *testing.T) {
		err := printer.NewTextPrinter(failingWriter{}).Print(context.Background(), sampleReceipt())
		if err == nil || !strings.Contains(err.Error(), "write receipt") {
			t.Errorf("expected wrapped write error, got %v", err)
		}
	})
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("paper jam") }
