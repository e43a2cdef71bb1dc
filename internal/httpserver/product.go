package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-api/internal/domain"
)

func listProductsHandler(products ProductService, includeInactive bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := products.List(c.Request.Context(), includeInactive)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": out})
	}
}

func getProductHandler(products ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := products.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

type productRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	PriceCents  int64  `json:"priceCents"`
	ImageURL    string `json:"imageUrl"`
	Category    string `json:"category"`
	IsActive    *bool  `json:"isActive"`
}

func createProductHandler(products ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "name is required")
			return
		}
		if req.PriceCents < 0 {
			badRequest(c, "priceCents must not be negative")
			return
		}
		active := true
		if req.IsActive != nil {
			active = *req.IsActive
		}
		p, err := products.Create(c.Request.Context(), domain.Product{
			Name:        req.Name,
			Description: req.Description,
			PriceCents:  req.PriceCents,
			ImageURL:    req.ImageURL,
			Category:    req.Category,
			IsActive:    active,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

func updateProductHandler(products ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "name is required")
			return
		}
		if req.PriceCents < 0 {
			badRequest(c, "priceCents must not be negative")
			return
		}
		existing, err := products.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		existing.Name = req.Name
		existing.Description = req.Description
		existing.PriceCents = req.PriceCents
		existing.ImageURL = req.ImageURL
		existing.Category = req.Category
		if req.IsActive != nil {
			existing.IsActive = *req.IsActive
		}
		p, err := products.Update(c.Request.Context(), *existing)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}
