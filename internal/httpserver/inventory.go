package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Quantity is a pointer so an explicit zero survives binding: setting stock
// to 0 is a valid absolute update.
type stockRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func listInventoryHandler(inventory InventoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := inventory.List(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"inventory": out})
	}
}

func getInventoryHandler(inventory InventoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := inventory.Get(c.Request.Context(), c.Param("productId"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

func setStockHandler(inventory InventoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req stockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "quantity is required")
			return
		}
		if *req.Quantity < 0 {
			badRequest(c, "quantity must not be negative")
			return
		}
		rec, err := inventory.SetQuantity(c.Request.Context(), c.Param("productId"), *req.Quantity)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

func restockHandler(inventory InventoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req stockRequest
		if err := c.ShouldBindJSON(&req); err != nil || *req.Quantity <= 0 {
			badRequest(c, "quantity must be positive")
			return
		}
		rec, err := inventory.Restock(c.Request.Context(), c.Param("productId"), *req.Quantity)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}
