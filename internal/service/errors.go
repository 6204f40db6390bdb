package service

import "errors"

// Typed rejections surfaced to handlers. Anything else coming out of a
// service is a storage error.
var (
	ErrRateLimited      = errors.New("rate_limited")
	ErrEmptyMessage     = errors.New("message content is empty")
	ErrUnknownSender    = errors.New("unknown sender character")
	ErrUnknownRecipient = errors.New("unknown recipient character")
)
