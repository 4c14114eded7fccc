package chathub

import "travelbay/backend/internal/models"

// Client is the interface for any type of live connection. It abstracts the
// underlying transport, allowing the hub to manage different client types
// uniformly.
type Client interface {
	// GetUserID returns the unique identifier of the user owning the connection.
	GetUserID() string
	// GetRole returns the caller's role, models.RoleCustomer or
	// models.RoleAgencyOwner.
	GetRole() string
	// GetAgencyID returns the agency identifier for agency-owner connections,
	// or an empty string.
	GetAgencyID() string

	// GetPost returns the post this connection opened a chat for, if any.
	GetPost() (PostKey, bool)

	// TrySend pushes an outbound frame without blocking. It returns false
	// when the frame was dropped, either because the client's buffer is
	// full or because the handle was already closed.
	TrySend(out models.Outbound) bool

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's connection and associated channels.
	Close()
}
