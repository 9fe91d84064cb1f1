// Package users implements the user-record screen: the record store
// gateway, the parsing and validation of form submissions and the
// dispatcher routing a submission to the gateway by its intent.
package users

import (
	"context"
	"errors"
)

//go:generate go run ../cmd/schemagen -dir .

// User is one row of the users table. ID is assigned by the database.
type User struct {
	ID    int64  `db:"id,primaryKey,autoIncrement" json:"id"`
	Name  string `db:"name" json:"name"`
	Age   int    `db:"age" json:"age"`
	Email string `db:"email" json:"email"`
}

// ErrInvalidRecord is returned by the store hooks when a write would
// persist an empty name or email.
var ErrInvalidRecord = errors.New("users: name and email must not be empty")

// BeforeCreate and BeforeUpdate keep empty names and emails out of the table.
func (u *User) BeforeCreate(context.Context) error { return u.check() }

func (u *User) BeforeUpdate(context.Context) error { return u.check() }

func (u *User) check() error {
	if u.Name == "" || u.Email == "" {
		return ErrInvalidRecord
	}
	return nil
}
