package routes

import (
	"panenku/ratelim"

	"github.com/julienschmidt/httprouter"
)

func RoutesWrapper(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	AddAuthRoutes(router, rateLimiter)
	AddProductRoutes(router, rateLimiter)
	AddFarmerRoutes(router, rateLimiter)
	AddCartRoutes(router, rateLimiter)
	AddCheckoutRoutes(router, rateLimiter)
	AddOrderRoutes(router, rateLimiter)
	AddAdminRoutes(router, rateLimiter)
	AddSubscriptionRoutes(router, rateLimiter)
	AddMidtransRoutes(router, rateLimiter)
	AddStaticRoutes(router, rateLimiter)
}
