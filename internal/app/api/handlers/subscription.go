package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	subsvc "github.com/renewly/renewly/internal/app/service/subscription"
	"github.com/renewly/renewly/pkg/response"
	"github.com/renewly/renewly/pkg/types"
)

type createSubscriptionRequest struct {
	Name          string     `json:"name" binding:"required"`
	Price         float64    `json:"price"`
	Currency      string     `json:"currency"`
	Category      string     `json:"category" binding:"required"`
	PaymentMethod string     `json:"payment_method" binding:"required"`
	Frequency     string     `json:"frequency" binding:"required"`
	StartDate     time.Time  `json:"start_date" binding:"required"`
	RenewDate     *time.Time `json:"renew_date"`
}

func ApiCreateSubscription(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createSubscriptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		in := &subsvc.CreateInput{
			Name:          req.Name,
			Price:         req.Price,
			Currency:      types.Currency(req.Currency),
			Category:      types.SubscriptionCategory(req.Category),
			PaymentMethod: req.PaymentMethod,
			Frequency:     types.SubscriptionFrequency(req.Frequency),
			StartDate:     req.StartDate,
			RenewDate:     req.RenewDate,
		}
		sub, err := svc.Create(c.Request.Context(), authedUserID(c), in)
		if err != nil {
			c.JSON(response.FromError(err))
			return
		}
		c.JSON(http.StatusCreated, response.OKT(sub))
	}
}

func ApiListSubscriptions(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		subs, err := svc.ListByUser(c.Request.Context(), authedUserID(c))
		if err != nil {
			c.JSON(response.FromError(err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(subs))
	}
}

func ApiGetSubscription(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, err := svc.Get(c.Request.Context(), authedUserID(c), c.Param("id"))
		if err != nil {
			c.JSON(response.FromError(err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

func ApiUpdateSubscription(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var updates map[string]interface{}
		if err := c.ShouldBindJSON(&updates); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		sub, err := svc.Update(c.Request.Context(), authedUserID(c), c.Param("id"), updates)
		if err != nil {
			c.JSON(response.FromError(err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

func ApiDeleteSubscription(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), authedUserID(c), c.Param("id")); err != nil {
			c.JSON(response.FromError(err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]string{"deleted": c.Param("id")}))
	}
}

func ApiCancelSubscription(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, err := svc.Cancel(c.Request.Context(), authedUserID(c), c.Param("id"))
		if err != nil {
			c.JSON(response.FromError(err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

func ApiCancelAllSubscriptions(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := svc.CancelAll(c.Request.Context(), authedUserID(c))
		if err != nil {
			c.JSON(response.FromError(err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]int64{"cancelled": count}))
	}
}

func ApiUpcomingRenewals(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.UpcomingRenewals(c.Request.Context(), authedUserID(c))
		if err != nil {
			c.JSON(response.FromError(err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterSubscriptionRoutes(r gin.IRouter, svc *subsvc.Service) {
	r.POST("", ApiCreateSubscription(svc))
	r.GET("", ApiListSubscriptions(svc))
	r.GET("/upcoming-renewals", ApiUpcomingRenewals(svc))
	r.PUT("/cancel-all", ApiCancelAllSubscriptions(svc))
	r.GET("/:id", ApiGetSubscription(svc))
	r.PUT("/:id", ApiUpdateSubscription(svc))
	r.DELETE("/:id", ApiDeleteSubscription(svc))
	r.PUT("/:id/cancel", ApiCancelSubscription(svc))
}

// authedUserID returns the user identity set by the auth middleware. Routes
// registered here sit behind it, so the key is always present.
func authedUserID(c *gin.Context) string {
	return c.GetString("user_id")
}
