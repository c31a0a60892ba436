package printer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	"github.com/dejobratic/cafepos/internal/orders/domain"
)

// TextPrinter renders receipts and cup labels as plain text, one receipt per write.
type TextPrinter struct {
	mu  sync.Mutex
	out io.Writer
}

func NewTextPrinter(out io.Writer) *TextPrinter {
	return &TextPrinter{out: out}
}

func (p *TextPrinter) Print(ctx context.Context, receipt domain.Receipt) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	Render(&buf, receipt)

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.out.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write receipt: %w", err)
	}
	return nil
}

// Render writes the receipt followed by one label per coffee cup.
func Render(w io.Writer, r domain.Receipt) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintf(tw, "ORDER #%d\t\n", r.OrderNumber)
	fmt.Fprintf(tw, "%s\t\n", r.IssuedAt.Format("2006-01-02 15:04"))
	for _, line := range r.Lines {
		fmt.Fprintf(tw, "%s\t%d\t\n", line.Name, line.Price)
	}
	fmt.Fprintf(tw, "total\t%d\t\n", r.Total)
	if r.Discount > 0 {
		fmt.Fprintf(tw, "discount\t-%d\t\n", r.Discount)
	}
	fmt.Fprintf(tw, "billing\t%d\t\n", r.BillingAmount)
	fmt.Fprintf(tw, "received\t%d\t\n", r.ReceivedAmount)
	fmt.Fprintf(tw, "charge\t%d\t\n", r.Charge)
	_ = tw.Flush()

	for _, label := range r.Labels {
		fmt.Fprintf(w, "--- #%d  %d/%d  %s", label.OrderNumber, label.Seq, label.Of, label.Name)
		if label.Assignee != "" {
			fmt.Fprintf(w, "  (%s)", label.Assignee)
		}
		fmt.Fprintln(w)
	}
}
