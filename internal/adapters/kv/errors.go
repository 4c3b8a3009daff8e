package kv

import "errors"

// Sentinel kinds for key-value store errors.
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrStoreClosed = errors.New("store closed")
)
