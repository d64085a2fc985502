package model

// User represents an application user record as stored in the
// `user` table. Passwords are persisted only as bcrypt hashes; the
// plaintext value never leaves the login/registration handlers.
//
// Fields:
//  UserID       – primary key identifier of the user.
//  UserName     – unique login name.
//  PasswordHash – bcrypt hashed password.
//  IsAdmin      – whether the user may call administrative routes.
type User struct {
	UserID       uint64 `json:"user_id"`  // user.user_id
	UserName     string `json:"user_name"` // user.user_name
	PasswordHash string `json:"-"`         // user.password_hash (never serialized)
	IsAdmin      bool   `json:"isadmin"`   // user.isadmin
}
