package main

import (
	"errors"
	"net/http"

	"bitbucket.org/mmdatafocus/procurement_backend/config"
	"bitbucket.org/mmdatafocus/procurement_backend/models"
	"bitbucket.org/mmdatafocus/procurement_backend/utils"
	"bitbucket.org/mmdatafocus/procurement_backend/workflow"
	"github.com/gin-gonic/gin"
)

type rejectRequest struct {
	// Emptiness is validated in the workflow so the caller gets the
	// ValidationError taxonomy rather than a bind failure.
	Reason string `json:"reason"`
}

type recordAssessmentRequest struct {
	Decision string                  `json:"decision" binding:"required"`
	Reason   string                  `json:"reason"`
	Trace    []models.ToolInvocation `json:"trace"`
}

// respondError maps the error taxonomy to HTTP codes:
// NotFound -> 404, InvalidState -> 409, ValidationError -> 400.
func respondError(c *gin.Context, err error) {
	var invalidState *utils.InvalidStateError
	var validation *utils.ValidationError

	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "NOT_FOUND"})
	case errors.As(err, &invalidState):
		c.JSON(http.StatusConflict, gin.H{"error": "INVALID_STATE", "status": invalidState.Current})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_ERROR", "message": validation.Error()})
	default:
		config.LogError(config.GetLogger(), "prHandlers.go", "respondError", c.FullPath(), nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL"})
	}
}

func listPRsHandler(svc *workflow.PRService) gin.HandlerFunc {
	return func(c *gin.Context) {
		prs, err := svc.List(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, prs)
	}
}

func createPRHandler(svc *workflow.PRService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewPurchaseRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_ERROR", "message": err.Error()})
			return
		}
		pr, err := svc.Create(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, pr)
	}
}

func getPRHandler(svc *workflow.PRService) gin.HandlerFunc {
	return func(c *gin.Context) {
		pr, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, pr)
	}
}

func approvePRHandler(svc *workflow.PRService) gin.HandlerFunc {
	return func(c *gin.Context) {
		pr, err := svc.Approve(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "pr": pr})
	}
}

func rejectPRHandler(svc *workflow.PRService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body rejectRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_ERROR", "message": err.Error()})
			return
		}
		pr, err := svc.Reject(c.Request.Context(), c.Param("id"), body.Reason)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "pr": pr})
	}
}

func assessPRHandler(svc *workflow.PRService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "pr.assess")
		defer span.End()

		assessment, err := svc.Assess(ctx, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, assessment)
	}
}

func recordAssessmentHandler(svc *workflow.PRService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body recordAssessmentRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_ERROR", "message": err.Error()})
			return
		}
		assessment, err := svc.RecordAssessment(
			c.Request.Context(),
			c.Param("id"),
			models.AssessmentDecision(body.Decision),
			body.Reason,
			models.Trace(body.Trace),
		)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "assessmentId": assessment.ID})
	}
}

func lastAssessmentHandler(svc *workflow.PRService) gin.HandlerFunc {
	return func(c *gin.Context) {
		assessment, err := svc.LatestAssessment(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		if assessment == nil {
			// "No assessment yet" is a distinct, non-error outcome.
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusOK, assessment)
	}
}

func listPolicyHandler(svc *workflow.PRService) gin.HandlerFunc {
	return func(c *gin.Context) {
		policies, err := svc.PolicyConfigs(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, policies)
	}
}
