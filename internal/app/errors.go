package app

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrMessageEmpty         = errors.New("message content is required")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrUsernameExists       = errors.New("username already exists")
	ErrInvalidCredential    = errors.New("invalid username or password")
)
