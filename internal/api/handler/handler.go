package handler

import (
	"gosip/backend/internal/chathub"
	"gosip/backend/internal/storage"
)

// Handler carries the hub and storage into the gin routes.
type Handler struct {
	Hub       *chathub.Hub
	Storage   storage.Storage
	JWTSecret []byte
}

func NewHandler(hub *chathub.Hub, s storage.Storage, jwtSecret string) *Handler {
	return &Handler{Hub: hub, Storage: s, JWTSecret: []byte(jwtSecret)}
}
