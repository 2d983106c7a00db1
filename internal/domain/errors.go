package domain

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrTypeDisabled          = errors.New("notification type disabled for user")
	ErrNotificationNotFound  = errors.New("notification not found")
	ErrTrackingNotFound      = errors.New("nudge tracking not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrDuplicateNotification = errors.New("active notification already exists")
	ErrFrequencyCapExceeded  = errors.New("frequency cap exceeded")
	ErrInvalidTransition     = errors.New("invalid state transition")
	ErrStorage               = errors.New("storage error")
	ErrDelivery              = errors.New("delivery error")
)
