package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func getCartHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := carts.GetOrCreate(c.Request.Context(), currentSession(c).SessionID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func addCartItemHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "productId is required")
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}
		cart, err := carts.AddItem(c.Request.Context(), currentSession(c).SessionID, req.ProductID, req.Quantity)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func updateCartItemHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
			badRequest(c, "quantity is required")
			return
		}
		cart, err := carts.UpdateItem(c.Request.Context(), currentSession(c).SessionID, c.Param("productId"), *req.Quantity)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func removeCartItemHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := carts.RemoveItem(c.Request.Context(), currentSession(c).SessionID, c.Param("productId"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func clearCartHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := carts.Clear(c.Request.Context(), currentSession(c).SessionID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func refreshCartHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := carts.Refresh(c.Request.Context(), currentSession(c).SessionID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}
