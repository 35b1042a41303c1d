package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SectionViews counts views of one section.
type SectionViews struct {
	Section string `json:"section"`
	Views   int64  `json:"views"`
}

// DocumentOpens counts viewer loads of one document.
type DocumentOpens struct {
	Ref      string `json:"ref"`
	Loaded   int64  `json:"loaded"`
	Failed   int64  `json:"failed"`
	MaxPages int    `json:"max_pages"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalVisits    int64           `json:"total_visits"`
	UniqueVisitors int64           `json:"unique_visitors"`
	VisitsToday    int64           `json:"visits_today"`
	VisitsThisWeek int64           `json:"visits_this_week"`
	Sections       []SectionViews  `json:"sections"`
	Documents      []DocumentOpens `json:"documents"`
	RecentVisits   []Visit         `json:"recent_visits"`
}

// Stats gathers the dashboard summary.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	week := now.Add(-7 * 24 * time.Hour)

	stats := &Stats{}
	counts := []struct {
		dst  *int64
		q    string
		args []any
	}{
		{&stats.TotalVisits, `SELECT COUNT(*) FROM visits`, nil},
		{&stats.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visits`, nil},
		{&stats.VisitsToday, `SELECT COUNT(*) FROM visits WHERE ts >= ?`, []any{today.Unix()}},
		{&stats.VisitsThisWeek, `SELECT COUNT(*) FROM visits WHERE ts >= ?`, []any{week.Unix()}},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.q, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("counting visits: %w", err)
		}
	}

	var err error
	if stats.Sections, err = s.sectionViews(ctx); err != nil {
		return nil, err
	}
	if stats.Documents, err = s.documentOpens(ctx); err != nil {
		return nil, err
	}
	if stats.RecentVisits, err = s.RecentVisits(ctx, 50); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Store) sectionViews(ctx context.Context) ([]SectionViews, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT section, COUNT(*) AS views
		FROM visits
		WHERE section != ''
		GROUP BY section
		ORDER BY views DESC, section ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying section views: %w", err)
	}
	defer rows.Close()

	var out []SectionViews
	for rows.Next() {
		var sv SectionViews
		if err := rows.Scan(&sv.Section, &sv.Views); err != nil {
			return nil, fmt.Errorf("scanning section views: %w", err)
		}
		out = append(out, sv)
	}
	return out, rows.Err()
}

func (s *Store) documentOpens(ctx context.Context) ([]DocumentOpens, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ref,
			SUM(CASE WHEN outcome = 'loaded' THEN 1 ELSE 0 END),
			SUM(CASE WHEN outcome = 'failed' THEN 1 ELSE 0 END),
			MAX(pages)
		FROM document_opens
		GROUP BY ref
		ORDER BY COUNT(*) DESC, ref ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying document opens: %w", err)
	}
	defer rows.Close()

	var out []DocumentOpens
	for rows.Next() {
		var d DocumentOpens
		var pages sql.NullInt64
		if err := rows.Scan(&d.Ref, &d.Loaded, &d.Failed, &pages); err != nil {
			return nil, fmt.Errorf("scanning document opens: %w", err)
		}
		d.MaxPages = int(pages.Int64)
		out = append(out, d)
	}
	return out, rows.Err()
}
