package datastore

import "errors"

// ErrNoSnapshot is returned when a supplier has no stored snapshot yet.
var ErrNoSnapshot = errors.New("no snapshot")
