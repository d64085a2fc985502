package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rapid-reservation/rapid-api/internal/model"
)

// OrderRepo provides data access to the `order` and `order_items`
// tables. Order is a reserved word in MySQL, hence the backticks.
// Placing an order writes both tables inside one transaction so a
// failed item insert can never leave a headless order behind.
type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

// GetByID fetches one order with its line items attached.
func (r *OrderRepo) GetByID(ctx context.Context, orderID uint64) (model.Order, error) {
	var o model.Order
	err := r.DB.QueryRowContext(ctx,
		"SELECT order_id, customer_id, table_id FROM `order` WHERE order_id = ? LIMIT 1",
		orderID).Scan(&o.OrderID, &o.CustomerID, &o.TableID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Order{}, ErrOrderNotFound
		}
		return model.Order{}, err
	}
	items, err := r.itemsFor(ctx, orderID)
	if err != nil {
		return model.Order{}, err
	}
	o.Items = items
	return o, nil
}

// List returns every order, items attached, ordered by order_id. Items
// for all orders are loaded with a single query and grouped in memory
// rather than issuing one query per order.
func (r *OrderRepo) List(ctx context.Context) ([]model.Order, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT order_id, customer_id, table_id FROM `order` ORDER BY order_id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]model.Order, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.OrderID, &o.CustomerID, &o.TableID); err != nil {
			return nil, err
		}
		o.Items = make([]model.OrderItem, 0)
		index[o.OrderID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := r.DB.QueryContext(ctx,
		"SELECT food_id, order_id, quantity FROM order_items")
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var it model.OrderItem
		if err := itemRows.Scan(&it.FoodID, &it.OrderID, &it.Quantity); err != nil {
			return nil, err
		}
		if i, ok := index[it.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

// Place inserts an order plus its items transactionally and returns the
// new order id. An empty item list is allowed; the order row still gets
// created so the table can be linked to it.
func (r *OrderRepo) Place(ctx context.Context, customerID, tableID uint64, items []model.OrderItem) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO `order` (customer_id, table_id) VALUES (?,?)",
		customerID, tableID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	orderID := uint64(id)

	if len(items) > 0 {
		query := "INSERT INTO order_items (food_id, order_id, quantity) VALUES "
		args := make([]interface{}, 0, len(items)*3)
		for i, it := range items {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?)"
			args = append(args, it.FoodID, orderID, it.Quantity)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return orderID, nil
}

// itemsFor loads the order_items rows belonging to one order.
func (r *OrderRepo) itemsFor(ctx context.Context, orderID uint64) ([]model.OrderItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT food_id, order_id, quantity FROM order_items WHERE order_id = ?", orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.OrderItem, 0)
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.FoodID, &it.OrderID, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
