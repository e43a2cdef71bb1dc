package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront-api/internal/domain"
	orderrepo "storefront-api/internal/repository/order"
)

type checkoutRequest struct {
	AddressID     string `json:"addressId" binding:"required"`
	PaymentMethod string `json:"paymentMethod"`
}

type checkoutResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Order   *domain.Order `json:"order,omitempty"`
}

func checkoutHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "addressId is required")
			return
		}
		sess := currentSession(c)
		order, err := orders.CreateFromCart(c.Request.Context(), *sess.UserID, sess.SessionID, req.AddressID, req.PaymentMethod)
		if err != nil {
			var oos *domain.OutOfStockError
			switch {
			case errors.As(err, &oos):
				c.JSON(http.StatusConflict, checkoutResponse{Success: false, Message: oos.Error()})
			case errors.Is(err, domain.ErrEmptyCart):
				c.JSON(http.StatusBadRequest, checkoutResponse{Success: false, Message: "cart is empty"})
			case errors.Is(err, domain.ErrNotFound):
				c.JSON(http.StatusNotFound, checkoutResponse{Success: false, Message: "not found"})
			default:
				c.JSON(http.StatusInternalServerError, checkoutResponse{Success: false, Message: "checkout failed"})
			}
			return
		}
		c.JSON(http.StatusCreated, checkoutResponse{Success: true, Message: "order created", Order: order})
	}
}

func listMyOrdersHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := orders.ListForUser(c.Request.Context(), *currentSession(c).UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": out})
	}
}

func getMyOrderHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := orders.GetForUser(c.Request.Context(), c.Param("id"), *currentSession(c).UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func listOrdersHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := orderrepo.ListFilter{
			Status: domain.OrderStatus(c.Query("status")),
			UserID: c.Query("userId"),
		}
		if filter.Status != "" && !domain.ValidOrderStatus(filter.Status) {
			badRequest(c, "unknown status")
			return
		}
		filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
		filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

		out, total, err := orders.List(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": out, "total": total})
	}
}

func getOrderHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := orders.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func updateOrderStatusHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "status is required")
			return
		}
		order, err := orders.UpdateStatus(c.Request.Context(), c.Param("id"), domain.OrderStatus(req.Status))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func updateFulfillmentHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "status is required")
			return
		}
		order, err := orders.UpdateFulfillment(c.Request.Context(), c.Param("id"), domain.FulfillmentStatus(req.Status))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
