package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/renewly/renewly/internal/app/service/scheduler"
	"github.com/renewly/renewly/pkg/response"
)

type triggerReminderRequest struct {
	SubscriptionID string `json:"subscription_id" binding:"required"`
}

// ApiTriggerReminderWorkflow enqueues (or revives) the reminder run for a
// subscription. The poller picks it up on its next tick.
func ApiTriggerReminderWorkflow(sched *scheduler.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req triggerReminderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if err := sched.Enqueue(c.Request.Context(), req.SubscriptionID); err != nil {
			c.JSON(response.FromError(err))
			return
		}
		c.JSON(http.StatusAccepted, response.OKT(map[string]string{
			"run_id": req.SubscriptionID,
			"status": "pending",
		}))
	}
}

func RegisterWorkflowRoutes(r gin.IRouter, sched *scheduler.Service) {
	r.POST("/subscriptions/reminder", ApiTriggerReminderWorkflow(sched))
}
