package notify

import "errors"

var (
	ErrRegistryClosed = errors.New("notification registry closed")
	ErrSend           = errors.New("notification send failed")
)
