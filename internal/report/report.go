package report

import (
	"context"
	"time"

	"github.com/dimasprakoso/catatduit/internal/messages"
	"github.com/dimasprakoso/catatduit/types"
	"github.com/rs/zerolog"
)

// ChartRenderer renders the aggregate into a PNG. Failures degrade the reply
// to text only.
type ChartRenderer interface {
	Render(ctx context.Context, data Aggregated) ([]byte, error)
}

type Reply struct {
	Text      string
	Image     []byte
	ImageMime string
}

type Builder struct {
	transactions types.TransactionStore
	charts       ChartRenderer
	log          zerolog.Logger
	now          func() time.Time
}

func NewBuilder(transactions types.TransactionStore, charts ChartRenderer, log zerolog.Logger) *Builder {
	return &Builder{
		transactions: transactions,
		charts:       charts,
		log:          log,
		now:          time.Now,
	}
}

// Build aggregates the user's transactions for the period and attaches a chart
// when the renderer cooperates. A period without any activity short-circuits
// to the fixed empty-report reply and skips the chart entirely.
func (b *Builder) Build(ctx context.Context, userID string, period types.ReportPeriod) (*Reply, error) {
	r := PeriodRange(period, b.now())
	txs, err := b.transactions.ListTransactionsInRange(ctx, userID, r.Start, r.End)
	if err != nil {
		return nil, err
	}

	data := Aggregate(txs, r, period)
	if data.IncomeTotal == 0 && data.ExpenseTotal == 0 {
		return &Reply{Text: messages.ReportEmpty(period)}, nil
	}

	topCategory := ""
	topTotal := 0.0
	if len(data.CategoryBreakdown) > 0 {
		topCategory = data.CategoryBreakdown[0].Category
		topTotal = data.CategoryBreakdown[0].Total
	}
	text := messages.ReportSummary(period, data.IncomeTotal, data.ExpenseTotal, topCategory, topTotal)

	image, err := b.charts.Render(ctx, data)
	if err != nil {
		b.log.Error().Err(err).Str("user_id", userID).Msg("failed to generate chart image")
		return &Reply{Text: text + messages.ChartUnavailableSuffix()}, nil
	}
	return &Reply{Text: text, Image: image, ImageMime: "image/png"}, nil
}
