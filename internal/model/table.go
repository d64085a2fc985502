package model

// Table represents a reservable dining table as stored in the
// `table` table. TableAvailable is the single source of truth for
// whether a table can currently be reserved; OrderID references the
// order occupying the table and is zero when the table is free.
//
// Fields:
//  TableID        – primary key identifier of the table.
//  OrderID        – order currently occupying the table (0 when free).
//  MaxCustomer    – seating capacity, always positive.
//  TableAvailable – true when the table is free to reserve.
type Table struct {
	TableID        uint64 `json:"table_id"`        // table.table_id
	OrderID        uint64 `json:"order_id"`        // table.order_id (0 when free)
	MaxCustomer    int    `json:"max_customer"`    // table.max_customer
	TableAvailable bool   `json:"table_available"` // table.table_available
}
