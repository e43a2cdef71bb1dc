package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-api/internal/domain"
)

type createAddressRequest struct {
	FullName   string `json:"fullName" binding:"required"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode" binding:"required"`
	Country    string `json:"country"`
}

func listAddressesHandler(addresses AddressService) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := addresses.List(c.Request.Context(), *currentSession(c).UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"addresses": out})
	}
}

func createAddressHandler(addresses AddressService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createAddressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "fullName, line1, city and postalCode are required")
			return
		}
		a, err := addresses.Create(c.Request.Context(), domain.Address{
			UserID:     *currentSession(c).UserID,
			FullName:   req.FullName,
			Phone:      req.Phone,
			Line1:      req.Line1,
			Line2:      req.Line2,
			City:       req.City,
			State:      req.State,
			PostalCode: req.PostalCode,
			Country:    req.Country,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, a)
	}
}

func deleteAddressHandler(addresses AddressService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := addresses.Delete(c.Request.Context(), c.Param("id"), *currentSession(c).UserID); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
