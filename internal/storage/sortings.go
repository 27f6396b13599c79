package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/sorting-hat/internal/common"
	"github.com/Veraticus/sorting-hat/internal/model"
	"github.com/google/uuid"
)

// SaveSorting stores a completed sorting. A missing ID or CreatedAt is filled in.
func (s *SQLiteStorage) SaveSorting(ctx context.Context, record *model.SortingRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecord(record); err != nil {
		return err
	}
	return withBusyRetry(ctx, func() error {
		return s.saveSortingTx(ctx, s.db, record)
	})
}

// SaveSortings stores records atomically.
func (s *SQLiteStorage) SaveSortings(ctx context.Context, records []model.SortingRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	for i := range records {
		if err := validateRecord(&records[i]); err != nil {
			return fmt.Errorf("record at index %d: %w", i, err)
		}
	}

	return withBusyRetry(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		for i := range records {
			if err := s.saveSortingTx(ctx, tx, &records[i]); err != nil {
				return err
			}
		}

		return tx.Commit()
	})
}

func (s *SQLiteStorage) saveSortingTx(ctx context.Context, q queryable, record *model.SortingRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	record.CreatedAt = record.CreatedAt.UTC()

	_, err := q.ExecContext(ctx, `
		INSERT INTO sortings (
			id, source_name, source_sha256, house, hash,
			crop_x, crop_y, crop_width, crop_height, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		record.SourceName,
		record.SourceSHA256,
		record.Category,
		record.Hash,
		record.Crop.X,
		record.Crop.Y,
		record.Crop.Width,
		record.Crop.Height,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save sorting: %w", err)
	}
	return nil
}

// GetSorting retrieves a sorting by ID.
func (s *SQLiteStorage) GetSorting(ctx context.Context, id string) (*model.SortingRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, selectSortings+` WHERE id = ?`, id)

	record, err := scanSorting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sorting %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sorting: %w", err)
	}
	return record, nil
}

// ListSortings returns up to limit sortings, newest first. A non-positive
// limit returns everything.
func (s *SQLiteStorage) ListSortings(ctx context.Context, limit int) ([]model.SortingRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := selectSortings + ` ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sortings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.SortingRecord
	for rows.Next() {
		record, err := scanSorting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sorting: %w", err)
		}
		records = append(records, *record)
	}

	return records, rows.Err()
}

// CountByHouse returns how many sortings landed in each house.
func (s *SQLiteStorage) CountByHouse(ctx context.Context) (map[string]int, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT house, COUNT(*) FROM sortings GROUP BY house`)
	if err != nil {
		return nil, fmt.Errorf("failed to count sortings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var house string
		var n int
		if err := rows.Scan(&house, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[house] = n
	}

	return counts, rows.Err()
}

const selectSortings = `
	SELECT id, source_name, source_sha256, house, hash,
		crop_x, crop_y, crop_width, crop_height, created_at
	FROM sortings`

type scanner interface {
	Scan(dest ...any) error
}

func scanSorting(row scanner) (*model.SortingRecord, error) {
	var record model.SortingRecord
	err := row.Scan(
		&record.ID,
		&record.SourceName,
		&record.SourceSHA256,
		&record.Category,
		&record.Hash,
		&record.Crop.X,
		&record.Crop.Y,
		&record.Crop.Width,
		&record.Crop.Height,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
