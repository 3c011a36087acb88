package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"citizenreport/apperrors"
	"citizenreport/services/authz"
	"citizenreport/services/comments"
	"citizenreport/services/geo"
	"citizenreport/services/issues"
	"citizenreport/services/report"
)

var (
	gate           *authz.Gate
	issueService   *issues.Service
	commentManager *comments.Manager
	workflow       *report.Workflow
	geoResolver    *geo.Resolver
)

// Setup wires the controllers to their services. Called once from main.
func Setup(g *authz.Gate, is *issues.Service, cm *comments.Manager, wf *report.Workflow, r *geo.Resolver) {
	gate = g
	issueService = is
	commentManager = cm
	workflow = wf
	geoResolver = r
}

// principalFromContext builds the principal set by the auth middleware.
// Returns nil for unauthenticated requests.
func principalFromContext(c *gin.Context) *authz.Principal {
	userID, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	id, ok := userID.(string)
	if !ok || id == "" {
		return nil
	}
	email := ""
	if v, exists := c.Get("user_email"); exists {
		email, _ = v.(string)
	}
	return &authz.Principal{ID: id, Email: email}
}

// respondServiceError maps service error kinds to HTTP responses.
func respondServiceError(c *gin.Context, err error) {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
		return
	}

	var aerr *apperrors.AuthorizationError
	if errors.As(err, &aerr) {
		// Unauthenticated callers are sent to sign in; authenticated ones
		// simply lack the capability.
		if principalFromContext(c) == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": aerr.Message})
		} else {
			c.JSON(http.StatusForbidden, gin.H{"error": aerr.Message})
		}
		return
	}

	var uerr *apperrors.UploadError
	if errors.As(err, &uerr) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed, please retry", "retryable": true})
		return
	}

	var terr *apperrors.TransientError
	if errors.As(err, &terr) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "temporary backend failure, please retry", "retryable": true})
		return
	}

	var gerr *apperrors.GeolocationError
	if errors.As(err, &gerr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": gerr.Error(), "kind": gerr.Kind})
		return
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
}
