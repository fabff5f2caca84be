package handler

import (
	"relayhub/internal/app/blob"
	"relayhub/internal/app/hub"
	"relayhub/internal/app/store"
	"relayhub/internal/configs"
)

// AppDeps bundles the shared dependencies injected into every handler.
type AppDeps struct {
	Manager *hub.Manager
	Config  *configs.AppConfig
	Store   *store.Fallback
	Blob    blob.Service
}
