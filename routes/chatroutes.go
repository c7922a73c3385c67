package routes

import (
	"panenku/chat"
	"panenku/middleware"
	"panenku/ratelim"

	"github.com/julienschmidt/httprouter"
)

// Chat routes take the hub, so they are registered separately in main.
func AddChatRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, hub *chat.Hub) {
	router.POST("/api/chat/rooms", rl.Limit(middleware.Authenticate(chat.FindOrCreateRoom)))
	router.GET("/api/chat/rooms", middleware.Authenticate(chat.ListMyRooms))
	router.GET("/api/chat/rooms/:room/messages", middleware.Authenticate(chat.GetMessages))
	router.POST("/api/chat/rooms/:room/messages", rl.Limit(middleware.Authenticate(chat.SendMessage(hub))))
	router.GET("/api/chat/ws/:room", chat.WebSocketHandler(hub))

	router.GET("/api/chat/presence/:userid", middleware.Authenticate(chat.GetPresence))
	router.POST("/api/chat/presence/heartbeat", middleware.Authenticate(chat.Heartbeat))
	router.POST("/api/chat/presence/offline", middleware.Authenticate(chat.GoOffline))
}
