package worker

import "errors"

// ErrNoCapacity is returned when every pipeline slot is busy. The queue is
// left untouched in that case.
var ErrNoCapacity = errors.New("no free pipeline slot")
