package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GetComments lists an issue's comment thread, oldest first. Anonymous
// viewers may read; author labels degrade gracefully when the identity
// lookup is unavailable.
func GetComments(c *gin.Context) {
	p := principalFromContext(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	entries, err := commentManager.List(ctx, c.Param("id"), p)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": entries})
}

// AddComment appends a comment to an issue
func AddComment(c *gin.Context) {
	p := principalFromContext(c)

	var input struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	comment, err := commentManager.Add(ctx, c.Param("id"), input.Content, p)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}
