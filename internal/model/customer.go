package model

// Customer mirrors the `customer` table. Contact details are plain
// strings; validation happens at the handler layer before insert.
type Customer struct {
	CustomerID uint64 `json:"customer_id"` // customer.customer_id
	Name       string `json:"customer_name"`
	Address    string `json:"customer_address"`
	Phone      string `json:"customer_phone"`
	Email      string `json:"customer_email"`
}
