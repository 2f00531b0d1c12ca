// Package common holds errors shared by the domain packages.
package common

import "errors"

var (
	ErrNotFound = errors.New("requested item not found")
	ErrConflict = errors.New("item already exists or conflict")
)
