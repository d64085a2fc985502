package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rapid-reservation/rapid-api/internal/model"
	"github.com/rapid-reservation/rapid-api/internal/utils"
)

// UserRepo provides data access to the `user` table. Passwords are
// hashed here, on the way in, so no caller ever handles a plaintext
// password past the registration handler.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, userName, password string, isAdmin bool, cost int) (uint64, error) {
	userName = strings.TrimSpace(userName)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO `user` (user_name, password_hash, isadmin) VALUES (?,?,?)",
		userName, hash, isAdmin)
	if err != nil {
		// 1062 = MySQL duplicate key, the unique index on user_name
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrUserExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUserName fetches a user by its unique login name.
func (r *UserRepo) GetByUserName(ctx context.Context, userName string) (model.User, error) {
	userName = strings.TrimSpace(userName)
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, user_name, password_hash, isadmin FROM `user` WHERE user_name = ? LIMIT 1",
		userName).Scan(&u.UserID, &u.UserName, &u.PasswordHash, &u.IsAdmin)
	return u, err
}

// List returns every user without password hashes, ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT user_id, user_name, isadmin FROM `user` ORDER BY user_id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.UserID, &u.UserName, &u.IsAdmin); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
