package services

import "errors"

// Dependency failure kinds. Services wrap the underlying cause as
// fmt.Errorf("%w: %w", ErrStorage, err) so handlers can map them to 5xx.
var (
	ErrStorage  = errors.New("storage failure")
	ErrDelivery = errors.New("email delivery failure")
	ErrIdentity = errors.New("identity provider failure")
)
