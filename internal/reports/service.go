// Package reports serves read-only financial summaries computed from
// the cash ledger and the customer table.
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tokokas/tokokas/internal/accounting/ledger"
)

// DailyReport is the ledger summary for one calendar date.
type DailyReport struct {
	Date    string         `json:"date"`
	Summary ledger.Summary `json:"summary"`
}

// RangeReport is the ledger summary for an inclusive date range.
type RangeReport struct {
	StartDate string         `json:"start_date"`
	EndDate   string         `json:"end_date"`
	Summary   ledger.Summary `json:"summary"`
}

// ChannelCount counts active customers per acquisition channel.
type ChannelCount struct {
	SourceChannel  string `json:"source_channel"`
	TotalCustomers int64  `json:"total_customers"`
}

// Summarizer aggregates ledger amounts over a date range.
type Summarizer interface {
	Summarize(ctx context.Context, from, to time.Time) (ledger.Summary, error)
}

// Service computes reports.
type Service struct {
	ledger Summarizer
	pool   *pgxpool.Pool
}

// NewService constructs Service.
func NewService(ledgerRepo Summarizer, pool *pgxpool.Pool) *Service {
	return &Service{ledger: ledgerRepo, pool: pool}
}

// Daily summarizes the cash ledger for one date.
func (s *Service) Daily(ctx context.Context, date time.Time) (DailyReport, error) {
	summary, err := s.ledger.Summarize(ctx, date, date)
	if err != nil {
		return DailyReport{}, fmt.Errorf("summarize ledger: %w", err)
	}
	return DailyReport{Date: date.Format("2006-01-02"), Summary: summary}, nil
}

// Range summarizes the cash ledger between start and end, inclusive.
func (s *Service) Range(ctx context.Context, start, end time.Time) (RangeReport, error) {
	summary, err := s.ledger.Summarize(ctx, start, end)
	if err != nil {
		return RangeReport{}, fmt.Errorf("summarize ledger: %w", err)
	}
	return RangeReport{
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
		Summary:   summary,
	}, nil
}

// CustomersByChannel counts active customers grouped by channel,
// busiest channel first.
func (s *Service) CustomersByChannel(ctx context.Context) ([]ChannelCount, error) {
	rows, err := s.pool.Query(ctx, `SELECT COALESCE(NULLIF(source_channel, ''), 'UNKNOWN'), COUNT(id)
FROM customers
WHERE is_active
GROUP BY 1
ORDER BY COUNT(id) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := []ChannelCount{}
	for rows.Next() {
		var c ChannelCount
		if err := rows.Scan(&c.SourceChannel, &c.TotalCustomers); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
