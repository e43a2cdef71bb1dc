package httpserver

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsOrigins) > 0 {
		corsCfg.AllowOrigins = corsOrigins
	} else {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	v1 := router.Group("/v1")
	v1.Use(sessionMiddleware(deps.Sessions))

	v1.POST("/login", loginHandler(deps.Sessions))
	v1.POST("/logout", logoutHandler(deps.Sessions))
	v1.GET("/me", meHandler(deps.Sessions))

	v1.GET("/products", listProductsHandler(deps.Products, false))
	v1.GET("/products/:id", getProductHandler(deps.Products))

	v1.GET("/cart", getCartHandler(deps.Carts))
	v1.POST("/cart/items", addCartItemHandler(deps.Carts))
	v1.PATCH("/cart/items/:productId", updateCartItemHandler(deps.Carts))
	v1.DELETE("/cart/items/:productId", removeCartItemHandler(deps.Carts))
	v1.POST("/cart/clear", clearCartHandler(deps.Carts))
	v1.POST("/cart/refresh", refreshCartHandler(deps.Carts))

	authed := v1.Group("")
	authed.Use(requireAuth())
	authed.POST("/checkout", checkoutHandler(deps.Orders))
	authed.GET("/orders", listMyOrdersHandler(deps.Orders))
	authed.GET("/orders/:id", getMyOrderHandler(deps.Orders))
	authed.GET("/addresses", listAddressesHandler(deps.Addresses))
	authed.POST("/addresses", createAddressHandler(deps.Addresses))
	authed.DELETE("/addresses/:id", deleteAddressHandler(deps.Addresses))

	admin := v1.Group("/admin")
	admin.Use(requireAdmin())
	admin.GET("/products", listProductsHandler(deps.Products, true))
	admin.POST("/products", createProductHandler(deps.Products))
	admin.PUT("/products/:id", updateProductHandler(deps.Products))
	admin.GET("/inventory", listInventoryHandler(deps.Inventory))
	admin.GET("/inventory/:productId", getInventoryHandler(deps.Inventory))
	admin.PUT("/inventory/:productId", setStockHandler(deps.Inventory))
	admin.POST("/inventory/:productId/restock", restockHandler(deps.Inventory))
	admin.GET("/orders", listOrdersHandler(deps.Orders))
	admin.GET("/orders/:id", getOrderHandler(deps.Orders))
	admin.PATCH("/orders/:id/status", updateOrderStatusHandler(deps.Orders))
	admin.PATCH("/orders/:id/fulfillment", updateFulfillmentHandler(deps.Orders))

	return router
}
