package handler

import (
	"travelbay/backend/internal/chathub"
	"travelbay/backend/internal/config"
	"travelbay/backend/internal/storage"
)

// Handler carries the dependencies shared by all HTTP endpoints.
type Handler struct {
	Hub     *chathub.Hub
	Storage storage.Storage
	Cfg     *config.Config

	// Payments verifies gateway references; nil means the callback body is
	// taken at face value (dev mode).
	Payments PaymentVerifier
}

func NewHandler(hub *chathub.Hub, s storage.Storage, cfg *config.Config) *Handler {
	return &Handler{Hub: hub, Storage: s, Cfg: cfg}
}
