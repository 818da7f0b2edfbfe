package chathub

import "gosip/backend/internal/models"

// Client is the interface for one authenticated connection. It abstracts the
// underlying transport so the hub and the gateway services can fan out events
// without knowing how they reach the peer.
type Client interface {
	// GetGoSipID returns the identity the auth gate attached to the connection.
	GetGoSipID() string

	// GetSendChannel returns the channel the hub writes outbound events to.
	// It is a send-only channel.
	GetSendChannel() chan<- models.ServerEvent

	// Run starts the client's read and write pumps.
	Run()

	// Close shuts down the client's connection and associated channels.
	Close()
}
