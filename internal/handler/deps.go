package handler

import (
	"roomchat/internal/app/chat"
	"roomchat/internal/app/message"
	"roomchat/internal/app/room"
	"roomchat/internal/app/storage"
	"roomchat/internal/app/user"
	"roomchat/internal/configs"
)

// AppDeps bundles the shared dependencies handed to every handler constructor.
type AppDeps struct {
	Hub            *chat.Hub
	Config         *configs.AppConfig
	Users          *user.Store
	Rooms          *room.Store
	Messages       *message.Store
	StorageService storage.StorageService
}
