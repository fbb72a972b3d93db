package handlers

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func registeredRoutes(r *gin.Engine) func(string) bool {
	routes := r.Routes()
	return func(target string) bool {
		for _, rt := range routes {
			if rt.Method+" "+rt.Path == target {
				return true
			}
		}
		return false
	}
}

func TestRegisterSubscriptionRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterSubscriptionRoutes(r.Group("/api/v1/subscriptions"), nil)

	contains := registeredRoutes(r)
	require.True(t, contains("POST /api/v1/subscriptions"))
	require.True(t, contains("GET /api/v1/subscriptions"))
	require.True(t, contains("GET /api/v1/subscriptions/upcoming-renewals"))
	require.True(t, contains("PUT /api/v1/subscriptions/cancel-all"))
	require.True(t, contains("GET /api/v1/subscriptions/:id"))
	require.True(t, contains("PUT /api/v1/subscriptions/:id"))
	require.True(t, contains("DELETE /api/v1/subscriptions/:id"))
	require.True(t, contains("PUT /api/v1/subscriptions/:id/cancel"))
}

func TestRegisterUserRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterUserRoutes(r.Group("/api/v1/users"), nil)

	contains := registeredRoutes(r)
	require.True(t, contains("GET /api/v1/users"))
	require.True(t, contains("GET /api/v1/users/me"))
	require.True(t, contains("PUT /api/v1/users/me/deactivate"))
	require.True(t, contains("PUT /api/v1/users/me/reactivate"))
	require.True(t, contains("DELETE /api/v1/users/me"))
}

func TestRegisterWorkflowRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterWorkflowRoutes(r.Group("/api/v1/workflows"), nil)

	contains := registeredRoutes(r)
	require.True(t, contains("POST /api/v1/workflows/subscriptions/reminder"))
}
