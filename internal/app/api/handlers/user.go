package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/renewly/renewly/internal/app/service/account"
	"github.com/renewly/renewly/pkg/response"
)

func ApiListUsers(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := svc.List(c.Request.Context())
		if err != nil {
			c.JSON(response.FromError(err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(users))
	}
}

func ApiGetCurrentUser(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := svc.Get(c.Request.Context(), authedUserID(c))
		if err != nil {
			c.JSON(response.FromError(err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(user))
	}
}

func ApiDeactivateAccount(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Deactivate(c.Request.Context(), authedUserID(c)); err != nil {
			c.JSON(response.FromError(err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]string{"status": "deactivated"}))
	}
}

func ApiReactivateAccount(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Reactivate(c.Request.Context(), authedUserID(c)); err != nil {
			c.JSON(response.FromError(err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]string{"status": "active"}))
	}
}

type deleteAccountRequest struct {
	Confirmation string `json:"confirmation"`
}

func ApiDeleteAccount(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req deleteAccountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if err := svc.DeletePermanently(c.Request.Context(), authedUserID(c), req.Confirmation); err != nil {
			c.JSON(response.FromError(err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]string{"status": "deleted"}))
	}
}

func RegisterUserRoutes(r gin.IRouter, svc *account.Service) {
	r.GET("", ApiListUsers(svc))
	r.GET("/me", ApiGetCurrentUser(svc))
	r.PUT("/me/deactivate", ApiDeactivateAccount(svc))
	r.PUT("/me/reactivate", ApiReactivateAccount(svc))
	r.DELETE("/me", ApiDeleteAccount(svc))
}
