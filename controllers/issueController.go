package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"citizenreport/models"
	"citizenreport/services/geo"
	"citizenreport/services/report"

	"github.com/gin-gonic/gin"
)

const maxPhotoBytes = 10 << 20 // 10MB, matching the upload form limit

// SubmitIssue handles the report submission workflow. Accepts JSON for
// photo-less reports and multipart/form-data when a photo is attached.
func SubmitIssue(c *gin.Context) {
	p := principalFromContext(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	draft, err := parseSubmission(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issue, serr := workflow.Submit(ctx, draft, p)
	if serr != nil {
		respondServiceError(c, serr)
		return
	}

	c.JSON(http.StatusCreated, issue)
}

func parseSubmission(c *gin.Context) (report.Draft, error) {
	ct := c.GetHeader("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		return parseMultipartSubmission(c)
	}

	var input struct {
		Title       string   `json:"title" binding:"required,max=200"`
		Description string   `json:"description" binding:"required,max=1000"`
		Category    string   `json:"category" binding:"required"`
		Latitude    *float64 `json:"latitude,omitempty"`
		Longitude   *float64 `json:"longitude,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		return report.Draft{}, err
	}

	draft := report.Draft{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
	}
	if input.Latitude != nil && input.Longitude != nil {
		draft.Coordinate = &geo.Coordinate{Lat: *input.Latitude, Lng: *input.Longitude}
	}
	return draft, nil
}

func parseMultipartSubmission(c *gin.Context) (report.Draft, error) {
	draft := report.Draft{
		Title:       strings.TrimSpace(c.PostForm("title")),
		Description: strings.TrimSpace(c.PostForm("description")),
		Category:    strings.TrimSpace(c.PostForm("category")),
	}

	latStr := c.PostForm("latitude")
	lngStr := c.PostForm("longitude")
	if latStr != "" && lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr == nil && lngErr == nil {
			draft.Coordinate = &geo.Coordinate{Lat: lat, Lng: lng}
		}
	}

	file, err := c.FormFile("photo")
	if err != nil || file == nil {
		return draft, nil
	}
	if file.Size > maxPhotoBytes {
		return report.Draft{}, errPhotoTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return report.Draft{}, err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxPhotoBytes+1))
	if err != nil {
		return report.Draft{}, err
	}

	draft.Photo = data
	draft.PhotoType = file.Header.Get("Content-Type")
	if draft.PhotoType == "" {
		draft.PhotoType = "image/jpeg"
	}
	return draft, nil
}

// filterFromQuery reads the list filters off the query string. The frontend
// sends "all" when a dropdown is left untouched, which means no filter.
func filterFromQuery(c *gin.Context) models.IssueFilter {
	filter := models.IssueFilter{Search: strings.TrimSpace(c.Query("search"))}

	if category := c.Query("category"); category != "" && category != "all" {
		filter.Category = category
	}
	if status := c.Query("status"); status != "" && status != "all" {
		filter.Status = status
	}

	return filter
}

// GetAllIssues handles retrieving all issues with filtering
func GetAllIssues(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	filter := filterFromQuery(c)

	issues, err := issueService.List(ctx, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"issues":      issues,
		"totalIssues": len(issues),
	})
}

// GetIssue retrieves an issue by its ID
func GetIssue(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	issue, err := issueService.Get(ctx, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// UpdateIssueStatus moves an issue through the triage workflow. Admin only.
func UpdateIssueStatus(c *gin.Context) {
	p := principalFromContext(c)

	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	issue, err := issueService.UpdateStatus(ctx, c.Param("id"), input.Status, p)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// RecentIssues returns the most recent issues for map rendering
func RecentIssues(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	issues, err := issueService.RecentPins(ctx, 19)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	type pin struct {
		ID        string    `json:"id"`
		Title     string    `json:"title"`
		Latitude  float64   `json:"latitude"`
		Longitude float64   `json:"longitude"`
		Location  string    `json:"location"`
		Category  string    `json:"category,omitempty"`
		CreatedAt time.Time `json:"createdAt,omitempty"`
	}

	pins := make([]pin, 0, len(issues))
	for _, issue := range issues {
		pins = append(pins, pin{
			ID:        issue.ID.Hex(),
			Title:     issue.Title,
			Latitude:  issue.Latitude,
			Longitude: issue.Longitude,
			Location:  issue.Location,
			Category:  string(issue.Category),
			CreatedAt: issue.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, pins)
}

// AdminSummary returns per-status counts for the admin dashboard
func AdminSummary(c *gin.Context) {
	p := principalFromContext(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	counts, err := issueService.DashboardSummary(ctx, p)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var total int64
	for _, n := range counts {
		total += n
	}

	c.JSON(http.StatusOK, gin.H{
		"total":      total,
		"pending":    counts["pending"],
		"inProgress": counts["in_progress"],
		"resolved":   counts["resolved"],
	})
}

// Locate reverse-geocodes a pinned coordinate so the form can display the
// address before submission. Degraded results carry the formatted
// coordinates instead of an address.
func Locate(c *gin.Context) {
	var input struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 20*time.Second)
	defer cancel()

	address := geoResolver.ReverseGeocode(ctx, geo.Coordinate{Lat: input.Lat, Lng: input.Lng})

	c.JSON(http.StatusOK, gin.H{
		"label":    address.Display,
		"degraded": address.Degraded,
	})
}

var errPhotoTooLarge = errors.New("photo must be 10MB or smaller")
