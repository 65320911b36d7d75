package poll

import "errors"

var (
	// ErrChannelPermissionDenied means the bot cannot post or react in
	// the configured channel. Publishing aborts with no partial state.
	ErrChannelPermissionDenied = errors.New("missing channel permissions")

	// ErrMessageNotFound means the Discord message behind a tracked
	// poll no longer exists.
	ErrMessageNotFound = errors.New("poll message not found")

	// ErrNoChannelConfigured means the guild has no poll channel set.
	ErrNoChannelConfigured = errors.New("no poll channel configured")
)
