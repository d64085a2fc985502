package model

// Order mirrors the `order` table. Items live in the separate
// `order_items` table and are attached by the repository when an
// order view is assembled.
//
// Fields:
//  OrderID    – primary key identifier of the order.
//  CustomerID – customer the order belongs to.
//  TableID    – table the order is served at.
//  Items      – line items loaded from order_items.
type Order struct {
	OrderID    uint64      `json:"order_id"`    // order.order_id
	CustomerID uint64      `json:"customer_id"` // order.customer_id
	TableID    uint64      `json:"table_id"`    // order.table_id
	Items      []OrderItem `json:"items"`
}

// OrderItem is one line of an order: a food item and how many of it
// were ordered.
type OrderItem struct {
	FoodID   uint64 `json:"food_id"`  // order_items.food_id
	OrderID  uint64 `json:"order_id"` // order_items.order_id
	Quantity int    `json:"quantity"` // order_items.quantity
}
