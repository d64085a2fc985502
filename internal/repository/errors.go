// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver error strings: an unknown table id becomes a 404,
// a duplicate username a 409, and everything else a generic 500 whose
// detail is only logged server side.
package repository

import "errors"

// ErrTableNotFound is returned when an operation references a table_id
// that does not exist. Handlers translate this into an HTTP 404.
var ErrTableNotFound = errors.New("table not found")

// ErrCustomerNotFound is returned when a customer lookup matches no row.
var ErrCustomerNotFound = errors.New("customer not found")

// ErrOrderNotFound is returned when an order lookup matches no row.
var ErrOrderNotFound = errors.New("order not found")

// ErrUserExists is returned when registration collides with an existing
// user_name. Handlers should translate this into an HTTP 409 response.
var ErrUserExists = errors.New("user name already exists")
