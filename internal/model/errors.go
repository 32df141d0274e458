package model

import "errors"

// ErrNotFound is returned by repositories for a missing aggregate.
var ErrNotFound = errors.New("not_found")
