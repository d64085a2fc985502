package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rapid-reservation/rapid-api/internal/model"
)

// CustomerRepo provides data access to the `customer` table.
type CustomerRepo struct{ DB *sql.DB }

func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{DB: db} }

// List returns every customer ordered by customer_id ascending.
func (r *CustomerRepo) List(ctx context.Context) ([]model.Customer, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT customer_id, customer_name, customer_address, customer_phone, customer_email FROM customer ORDER BY customer_id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]model.Customer, 0)
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.CustomerID, &c.Name, &c.Address, &c.Phone, &c.Email); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return customers, nil
}

// GetByID fetches a single customer.
func (r *CustomerRepo) GetByID(ctx context.Context, customerID uint64) (model.Customer, error) {
	var c model.Customer
	err := r.DB.QueryRowContext(ctx,
		"SELECT customer_id, customer_name, customer_address, customer_phone, customer_email FROM customer WHERE customer_id = ? LIMIT 1",
		customerID).Scan(&c.CustomerID, &c.Name, &c.Address, &c.Phone, &c.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Customer{}, ErrCustomerNotFound
		}
		return model.Customer{}, err
	}
	return c, nil
}

// Create inserts a customer record and returns its ID.
func (r *CustomerRepo) Create(ctx context.Context, c model.Customer) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO customer (customer_name, customer_address, customer_phone, customer_email) VALUES (?,?,?,?)",
		c.Name, c.Address, c.Phone, c.Email)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}
