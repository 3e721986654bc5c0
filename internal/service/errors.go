package service

import "errors"

var (
	// ErrNotFound: записи с таким id нет.
	ErrNotFound = errors.New("vault entry not found")
	// ErrUnauthorized: запись существует, но принадлежит другому владельцу.
	ErrUnauthorized = errors.New("vault entry belongs to another owner")
)
