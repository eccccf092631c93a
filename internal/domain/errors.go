package domain

import "errors"

var (
	// ErrNotConnected is returned when a command is sent without a live channel.
	ErrNotConnected = errors.New("realtime channel not connected")
	// ErrSessionEnded indicates an action arrived after the quiz finished.
	ErrSessionEnded = errors.New("quiz session already ended")
	// ErrNotHost indicates a host-only action from a non-host role.
	ErrNotHost = errors.New("action requires the host role")
	// ErrArenaNotFound indicates the arena could not be loaded from the API.
	ErrArenaNotFound = errors.New("arena not found")
	// ErrUnauthorized indicates the API rejected the credentials or token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUnknownEvent indicates an inbound event name outside the contract.
	ErrUnknownEvent = errors.New("unknown realtime event")
)
