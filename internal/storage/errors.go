package storage

import "errors"

var (
	ErrUserExist = errors.New("user already exists")
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("conflict")
)
