package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rapid-reservation/rapid-api/internal/model"
)

// TableRepo provides data access to the `table` table. Every query is
// parameterized and scans into named struct fields; nothing in this
// package relies on column position. The table name is a reserved word
// in MySQL, hence the backticks in each statement.
type TableRepo struct{ DB *sql.DB }

// NewTableRepo returns a new TableRepo bound to the provided database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{DB: db} }

// GetByID fetches a single table view by its id.
func (r *TableRepo) GetByID(ctx context.Context, tableID uint64) (model.Table, error) {
	var t model.Table
	var orderID sql.NullInt64
	err := r.DB.QueryRowContext(ctx,
		"SELECT table_id, order_id, max_customer, table_available FROM `table` WHERE table_id = ? LIMIT 1",
		tableID).Scan(&t.TableID, &orderID, &t.MaxCustomer, &t.TableAvailable)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Table{}, ErrTableNotFound
		}
		return model.Table{}, err
	}
	if orderID.Valid {
		t.OrderID = uint64(orderID.Int64)
	}
	return t, nil
}

// List returns every table ordered by table_id ascending.
func (r *TableRepo) List(ctx context.Context) ([]model.Table, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT table_id, order_id, max_customer, table_available FROM `table` ORDER BY table_id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := make([]model.Table, 0)
	for rows.Next() {
		var t model.Table
		var orderID sql.NullInt64
		if err := rows.Scan(&t.TableID, &orderID, &t.MaxCustomer, &t.TableAvailable); err != nil {
			return nil, err
		}
		if orderID.Valid {
			t.OrderID = uint64(orderID.Int64)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tables, nil
}

// SetAvailability flips the table_available flag for one table. The
// update is idempotent: writing the value a row already holds reports
// zero affected rows, so a follow-up existence check separates "nothing
// changed" from "no such table" and only the latter is an error.
func (r *TableRepo) SetAvailability(ctx context.Context, tableID uint64, available bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE `table` SET table_available = ? WHERE table_id = ?",
		available, tableID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var one int
		err := r.DB.QueryRowContext(ctx,
			"SELECT 1 FROM `table` WHERE table_id = ? LIMIT 1", tableID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTableNotFound
		}
		return err
	}
	return nil
}

// ReleaseAll marks every table available in a single statement. Used by
// the bulk clear operation at closing time.
func (r *TableRepo) ReleaseAll(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE `table` SET table_available = TRUE")
	return err
}
