package handler

import (
	"github.com/leca/dt-petfriends/internal/config"
	"github.com/leca/dt-petfriends/internal/database"
	"github.com/leca/dt-petfriends/internal/storage"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	DB     database.Database
	Store  storage.Storage
	Config *config.Config
}
