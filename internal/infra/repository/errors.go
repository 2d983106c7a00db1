package repository

import "errors"

var (
	ErrInvalidRecordData   = errors.New("invalid notification record data")
	ErrInvalidTrackingData = errors.New("invalid nudge tracking data")
)
