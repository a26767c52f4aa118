package db

import (
	"context"
	"event-hub/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- USERS ----------------

// CreateUser → insert new user row
func (d *DB) CreateUser(user models.User) error {
	_, err := d.Bun.NewInsert().Model(&user).Exec(context.Background())
	return err
}

// GetUserByID → fetch one user by its ID
func (d *DB) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername → fetch one user by username
func (d *DB) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("username = ?", username).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UsernameExists → check whether a username is already taken
func (d *DB) UsernameExists(username string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.User)(nil)).
		Where("username = ?", username).
		Exists(context.Background())
}
