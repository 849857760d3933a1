package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"placement-stats/models"
)

const batchSize = 50

// PostgresStore persists cleaned placements to PostgreSQL and reads them back
// for the statistics.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresStore.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS placements (
			position       INTEGER PRIMARY KEY,
			upstream_id    BIGINT,
			company        TEXT        NOT NULL,
			ctc            DOUBLE PRECISION,
			placement_date TIMESTAMPTZ,
			stored_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS placement_branches (
			placement_position INTEGER NOT NULL REFERENCES placements(position) ON DELETE CASCADE,
			idx                INTEGER NOT NULL,
			branch             TEXT    NOT NULL,
			count              INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (placement_position, idx)
		);

		CREATE INDEX IF NOT EXISTS idx_placements_company ON placements(company);
		CREATE INDEX IF NOT EXISTS idx_placements_date    ON placements(placement_date);
		CREATE INDEX IF NOT EXISTS idx_branches_branch    ON placement_branches(branch);
	`)
	return err
}

// Write replaces the stored placements with the given list in one transaction.
// Record order is kept through the position column.
func (ps *PostgresStore) Write(ctx context.Context, placements []models.Placement) error {
	if len(placements) == 0 {
		return nil
	}

	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM placements"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}

	for i := 0; i < len(placements); i += batchSize {
		end := min(i+batchSize, len(placements))
		query, args := placementInsert(i, placements[i:end])
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("postgres: insert placements: %w", err)
		}
	}

	rows := branchRows(placements)
	for i := 0; i < len(rows); i += batchSize {
		end := min(i+batchSize, len(rows))
		query, args := branchInsert(rows[i:end])
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("postgres: insert branches: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

// FetchAll retrieves the stored placements in their original order.
func (ps *PostgresStore) FetchAll(ctx context.Context) ([]models.Placement, error) {
	rows, err := ps.db.QueryContext(ctx, `
		SELECT position, upstream_id, company, ctc, placement_date
		FROM placements
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch placements: %w", err)
	}
	defer rows.Close()

	placements := make([]models.Placement, 0)
	byPosition := make(map[int]int)
	for rows.Next() {
		var (
			position int
			id       sql.NullInt64
			company  string
			ctc      sql.NullFloat64
			date     sql.NullTime
		)
		if err := rows.Scan(&position, &id, &company, &ctc, &date); err != nil {
			return nil, fmt.Errorf("postgres: scan placement: %w", err)
		}
		byPosition[position] = len(placements)
		placements = append(placements, models.Placement{
			ID:            id.Int64,
			Company:       company,
			CTC:           ctcFromDB(ctc),
			PlacementDate: dateFromDB(date),
			BranchCounts:  []models.BranchCount{},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: fetch placements: %w", err)
	}

	brows, err := ps.db.QueryContext(ctx, `
		SELECT placement_position, branch, count
		FROM placement_branches
		ORDER BY placement_position, idx
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch branches: %w", err)
	}
	defer brows.Close()

	for brows.Next() {
		var (
			position int
			bc       models.BranchCount
		)
		if err := brows.Scan(&position, &bc.Branch, &bc.Count); err != nil {
			return nil, fmt.Errorf("postgres: scan branch: %w", err)
		}
		if i, ok := byPosition[position]; ok {
			placements[i].BranchCounts = append(placements[i].BranchCounts, bc)
		}
	}
	return placements, brows.Err()
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}

type branchRow struct {
	position int
	idx      int
	bc       models.BranchCount
}

func branchRows(placements []models.Placement) []branchRow {
	var out []branchRow
	for pos, p := range placements {
		for idx, bc := range p.BranchCounts {
			out = append(out, branchRow{position: pos, idx: idx, bc: bc})
		}
	}
	return out
}

// placementInsert builds a multi-row INSERT for batch, whose first record sits at offset.
func placementInsert(offset int, batch []models.Placement) (string, []any) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*5)

	for idx, p := range batch {
		base := idx * 5
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d)", base+1, base+2, base+3, base+4, base+5))
		valueArgs = append(valueArgs,
			offset+idx, idValue(p.ID), p.Company, ctcValue(p.CTC), dateValue(p.PlacementDate))
	}

	query := fmt.Sprintf(`
		INSERT INTO placements (position, upstream_id, company, ctc, placement_date)
		VALUES %s
	`, strings.Join(valueStrings, ","))
	return query, valueArgs
}

func branchInsert(batch []branchRow) (string, []any) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*4)

	for idx, r := range batch {
		base := idx * 4
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d)", base+1, base+2, base+3, base+4))
		valueArgs = append(valueArgs, r.position, r.idx, r.bc.Branch, r.bc.Count)
	}

	query := fmt.Sprintf(`
		INSERT INTO placement_branches (placement_position, idx, branch, count)
		VALUES %s
	`, strings.Join(valueStrings, ","))
	return query, valueArgs
}

// idValue stores a missing upstream id (0) as NULL.
func idValue(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

func ctcValue(ctc float64) sql.NullFloat64 {
	if math.IsNaN(ctc) || math.IsInf(ctc, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: ctc, Valid: true}
}

func dateValue(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func ctcFromDB(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func dateFromDB(v sql.NullTime) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return v.Time.UTC()
}
