package chat

import "errors"

var (
	// ErrMissingFields is returned when a post lacks a username or message.
	ErrMissingFields = errors.New("username and message are required")
	// ErrMissingUsernames is returned when a rename lacks either name.
	ErrMissingUsernames = errors.New("both old_username and new_username are required")
	// ErrSameUsername is returned when a rename targets the current name.
	ErrSameUsername = errors.New("new username must be different from current username")
)
