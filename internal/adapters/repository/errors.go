package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrCorruptRecord = errors.New("corrupt stored record")
)
