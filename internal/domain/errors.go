package domain

import "errors"

// ErrNotFound is returned by repositories when the requested route, stop or
// shipment does not exist. Handlers map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input violates a business rule
// (e.g. time window end before start, illegal route state transition).
// Handlers map this to HTTP 422.
var ErrValidation = errors.New("validation error")
