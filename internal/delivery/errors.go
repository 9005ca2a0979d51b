package delivery

import "errors"

var (
	ErrDelivery = errors.New("delivery failed")
	ErrListing  = errors.New("destination listing failed")
)
