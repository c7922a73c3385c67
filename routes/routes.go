package routes

import (
	"net/http"

	"panenku/admin"
	"panenku/auth"
	"panenku/cart"
	"panenku/checkout"
	"panenku/farmer"
	"panenku/middleware"
	"panenku/midtrans"
	"panenku/models"
	"panenku/orders"
	"panenku/products"
	"panenku/ratelim"
	"panenku/subscriptions"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router, _ *ratelim.RateLimiter) {
	router.ServeFiles("/static/productpic/*filepath", http.Dir("static/productpic"))
	router.ServeFiles("/static/paymentproof/*filepath", http.Dir("static/paymentproof"))
}

func AddAuthRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/register", rl.Limit(auth.Register))
	router.POST("/api/auth/login", rl.Limit(auth.Login))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.LogoutUser))
	router.POST("/api/auth/token/refresh", rl.Limit(auth.RefreshToken))

	router.GET("/api/profile", middleware.Authenticate(auth.GetProfile))
	router.PUT("/api/profile", middleware.Authenticate(auth.UpdateProfile))
}

func AddProductRoutes(router *httprouter.Router, _ *ratelim.RateLimiter) {
	router.GET("/api/products", products.GetProducts)
	router.GET("/api/products/:id", products.GetProduct)
}

func AddFarmerRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	farmerOnly := func(h httprouter.Handle) httprouter.Handle {
		return middleware.RequireRole(h, models.RoleFarmer, models.RoleAdmin)
	}

	router.GET("/api/farmer/products", farmerOnly(products.GetMyProducts))
	router.POST("/api/farmer/products", rl.Limit(farmerOnly(products.CreateProduct)))
	router.PUT("/api/farmer/products/:id", farmerOnly(products.UpdateProduct))
	router.DELETE("/api/farmer/products/:id", farmerOnly(products.DeleteProduct))
	router.PATCH("/api/farmer/products/:id/stock", farmerOnly(products.AdjustStock))
	router.POST("/api/farmer/products/:id/image", farmerOnly(products.UploadProductImage))

	router.GET("/api/farmer/orders", farmerOnly(farmer.GetIncomingOrders))
	router.PATCH("/api/farmer/orders/:id/status", farmerOnly(farmer.AdvanceOrderStatus))
	router.GET("/api/farmer/dashboard", farmerOnly(farmer.Dashboard))
}

func AddCartRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/cart", middleware.Authenticate(cart.GetCart))
	router.POST("/api/cart", rl.Limit(middleware.Authenticate(cart.AddToCart)))
	router.PATCH("/api/cart/:productid", middleware.Authenticate(cart.UpdateQuantity))
	router.DELETE("/api/cart/:productid", middleware.Authenticate(cart.RemoveItem))
	router.DELETE("/api/cart", middleware.Authenticate(cart.ClearCart))
}

func AddCheckoutRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/checkout", rl.Limit(middleware.Authenticate(checkout.Checkout)))
}

func AddOrderRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/orders", middleware.Authenticate(orders.GetMyOrders))
	router.GET("/api/orders/:id", middleware.Authenticate(orders.GetMyOrder))
	router.POST("/api/orders/:id/payment", rl.Limit(middleware.Authenticate(orders.UploadPaymentProof)))
	router.GET("/api/orders/:id/receipt", middleware.Authenticate(orders.DownloadReceipt))
}

func AddAdminRoutes(router *httprouter.Router, _ *ratelim.RateLimiter) {
	adminOnly := func(h httprouter.Handle) httprouter.Handle {
		return middleware.RequireRole(h, models.RoleAdmin)
	}

	router.GET("/api/admin/users", adminOnly(admin.GetUsers))
	router.PATCH("/api/admin/users/:id", adminOnly(admin.UpdateUserRole))
	router.GET("/api/admin/orders", adminOnly(admin.GetOrders))
	router.PATCH("/api/admin/orders/:id/status", adminOnly(admin.SetOrderStatus))
	router.PATCH("/api/admin/orders/:id/payment", adminOnly(admin.VerifyPayment))
	router.GET("/api/admin/dashboard", adminOnly(admin.Dashboard))
}

func AddSubscriptionRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/subscriptions", middleware.Authenticate(subscriptions.GetMySubscriptions))
	router.POST("/api/subscriptions", rl.Limit(middleware.Authenticate(subscriptions.CreateSubscription)))
	router.PATCH("/api/subscriptions/:id", middleware.Authenticate(subscriptions.UpdateSubscription))
	router.DELETE("/api/subscriptions/:id", middleware.Authenticate(subscriptions.DeleteSubscription))

	// guarded by CRON_SECRET inside the handler, not by a user session
	router.POST("/api/cron/subscriptions", subscriptions.RunScheduler)
}

func AddMidtransRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/midtrans/token", rl.Limit(middleware.Authenticate(midtrans.SnapToken)))
	// server-to-server webhook; authenticated by payload signature
	router.POST("/api/midtrans/notification", midtrans.Notification)
}
