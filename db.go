package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"accelerometer_worker/stats"
)

var dialect = goqu.Dialect("postgres")

type reading struct {
	RecordedAt time.Time
	X, Y, Z    sql.NullFloat64
}

type axisSummary struct {
	Axis    string
	Summary stats.Summary
}

type dbConn interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type store struct {
	db dbConn
}

func newStore(db dbConn) *store {
	return &store{db: db}
}

func captureExistsQuery(id int64) (string, []interface{}, error) {
	return dialect.From("captures").
		Select(goqu.C("id")).
		Where(goqu.C("id").Eq(id)).
		Limit(1).
		Prepared(true).
		ToSQL()
}

func (s *store) captureExists(ctx context.Context, id int64) (bool, error) {
	q, args, err := captureExistsQuery(id)
	if err != nil {
		return false, err
	}
	var found int64
	err = s.db.QueryRowContext(ctx, q, args...).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func captureWindowQuery(id int64) (string, []interface{}, error) {
	return dialect.From("captures").
		Select(goqu.C("page"), goqu.C("per_page")).
		Where(goqu.C("id").Eq(id)).
		Limit(1).
		Prepared(true).
		ToSQL()
}

func (s *store) fetchCaptureWindow(ctx context.Context, id int64) (int, int, error) {
	q, args, err := captureWindowQuery(id)
	if err != nil {
		return 0, 0, err
	}
	var page, perPage sql.NullInt64
	err = s.db.QueryRowContext(ctx, q, args...).Scan(&page, &perPage)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, 0, err
	}
	return normalizePositiveInt(page.Int64, 1), normalizePositiveInt(perPage.Int64, 1), nil
}

func readingsQuery(captureID int64, page, perPage int) (string, []interface{}, error) {
	limit, offset := windowLimitOffset(page, perPage)
	return dialect.From("readings").
		Select(goqu.C("recorded_at"), goqu.C("x"), goqu.C("y"), goqu.C("z")).
		Where(goqu.C("capture_id").Eq(captureID)).
		Order(goqu.C("id").Asc()).
		Limit(uint(limit)).
		Offset(uint(offset)).
		Prepared(true).
		ToSQL()
}

func (s *store) fetchReadings(ctx context.Context, captureID int64, page, perPage int) ([]reading, error) {
	q, args, err := readingsQuery(captureID, page, perPage)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]reading, 0, perPage)
	for rows.Next() {
		var r reading
		if err := rows.Scan(&r.RecordedAt, &r.X, &r.Y, &r.Z); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func windowLimitOffset(page, perPage int) (limit, offset int) {
	pp := perPage
	if pp <= 0 {
		pp = 1
	}
	pg := page
	if pg <= 0 {
		pg = 1
	}
	return pp, (pg - 1) * pp
}

func normalizePositiveInt(value int64, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return int(value)
}

func insertAxisSummaryQuery(captureID int64, a axisSummary, durationSeconds, memoryBytes float64) (string, []interface{}, error) {
	st := a.Summary
	return dialect.Insert("axis_summaries").
		Rows(goqu.Record{
			"capture_id":         captureID,
			"axis":               a.Axis,
			"count":              st.Count,
			"mean":               st.Mean,
			"median":             st.Median,
			"q1":                 st.Q1,
			"q3":                 st.Q3,
			"min":                st.Min,
			"max":                st.Max,
			"standard_deviation": st.StdDev,
			"zero_crossings":     st.ZeroCrossings,
			"duration":           durationSeconds,
			"memory":             memoryBytes,
			"created_at":         goqu.L("NOW()"),
			"updated_at":         goqu.L("NOW()"),
		}).
		Prepared(true).
		ToSQL()
}

func (s *store) insertAxisSummary(ctx context.Context, captureID int64, a axisSummary, durationSeconds, memoryBytes float64) error {
	q, args, err := insertAxisSummaryQuery(captureID, a, durationSeconds, memoryBytes)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, q, args...)
	return err
}
