package http

import (
	"net/http"
	"time"

	"github.com/comitanigiacomo/kanso-learn/internal/core/domain"
	"github.com/comitanigiacomo/kanso-learn/internal/core/services"
	"github.com/gin-gonic/gin"
)

type ResourceHandler struct {
	svc *services.ResourceService
}

func NewResourceHandler(svc *services.ResourceService) *ResourceHandler {
	return &ResourceHandler{svc: svc}
}

type createResourceRequest struct {
	Title    string   `json:"title" binding:"required"`
	Type     string   `json:"type" binding:"required"`
	URL      string   `json:"url"`
	Notes    string   `json:"notes"`
	Status   string   `json:"status"`
	Deadline string   `json:"deadline"`
	Tags     []string `json:"tags"`
}

type updateResourceRequest struct {
	Title    string   `json:"title" binding:"required"`
	Type     string   `json:"type" binding:"required"`
	URL      string   `json:"url"`
	Notes    string   `json:"notes"`
	Status   string   `json:"status"`
	Deadline string   `json:"deadline"`
	Tags     []string `json:"tags"`
	Version  int      `json:"version"`
}

type changeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type resourceListResponse struct {
	Resources []*domain.Resource `json:"resources"`
	Count     int                `json:"count"`
}

func (h *ResourceHandler) RegisterRoutes(router *gin.RouterGroup) {
	resources := router.Group("/resources")
	{
		resources.POST("", h.Create)
		resources.GET("", h.List)
		resources.GET("/tags", h.Tags)
		resources.GET("/stats", h.Stats)
		resources.GET("/:id", h.Get)
		resources.PUT("/:id", h.Update)
		resources.PATCH("/:id/status", h.ChangeStatus)
		resources.DELETE("/:id", h.Delete)
	}
}

// An empty deadline clears it.
func parseDeadline(c *gin.Context, raw string) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	d, ok := parseDate(c, "deadline", raw)
	if !ok {
		return nil, false
	}
	return &d, true
}

// Create godoc
// @Summary  Add a learning resource
// @Tags     resources
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body createResourceRequest true "Resource"
// @Success  201 {object} domain.Resource
// @Failure  400 {object} map[string]string
// @Router   /resources [post]
func (h *ResourceHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req createResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deadline, ok := parseDeadline(c, req.Deadline)
	if !ok {
		return
	}

	resource, err := h.svc.Create(c.Request.Context(), services.CreateResourceInput{
		UserID:   userID,
		Title:    req.Title,
		Type:     req.Type,
		URL:      req.URL,
		Notes:    req.Notes,
		Status:   req.Status,
		Deadline: deadline,
		Tags:     req.Tags,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resource)
}

// List godoc
// @Summary  List resources, newest first
// @Tags     resources
// @Produce  json
// @Security BearerAuth
// @Param    status query string false "not-started, in-progress or completed"
// @Param    type   query string false "video, blog, article or course"
// @Param    tag    query string false "Exact tag"
// @Param    q      query string false "Search in title, notes and tags"
// @Success  200 {object} resourceListResponse
// @Router   /resources [get]
func (h *ResourceHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	filter := domain.ResourceFilter{
		Tag:   c.Query("tag"),
		Query: c.Query("q"),
	}
	if raw := c.Query("status"); raw != "" {
		status, err := domain.ParseResourceStatus(raw)
		if err != nil {
			handleError(c, err)
			return
		}
		filter.Status = status
	}
	if raw := c.Query("type"); raw != "" {
		rType, err := domain.ParseResourceType(raw)
		if err != nil {
			handleError(c, err)
			return
		}
		filter.Type = rType
	}

	resources, err := h.svc.List(c.Request.Context(), userID, filter)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resourceListResponse{Resources: resources, Count: len(resources)})
}

func (h *ResourceHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	resource, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resource)
}

// Update godoc
// @Summary  Replace a resource's editable fields
// @Tags     resources
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path string true "Resource ID"
// @Param    body body updateResourceRequest true "Resource"
// @Success  200 {object} domain.Resource
// @Failure  400,403,404,409 {object} map[string]string
// @Router   /resources/{id} [put]
func (h *ResourceHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req updateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deadline, ok := parseDeadline(c, req.Deadline)
	if !ok {
		return
	}

	resource, err := h.svc.Update(c.Request.Context(), services.UpdateResourceInput{
		ID:       c.Param("id"),
		UserID:   userID,
		Title:    req.Title,
		Type:     req.Type,
		URL:      req.URL,
		Notes:    req.Notes,
		Status:   req.Status,
		Deadline: deadline,
		Tags:     req.Tags,
		Version:  req.Version,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resource)
}

func (h *ResourceHandler) ChangeStatus(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resource, err := h.svc.ChangeStatus(c.Request.Context(), c.Param("id"), userID, req.Status)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resource)
}

func (h *ResourceHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ResourceHandler) Tags(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	tags, err := h.svc.Tags(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// Stats godoc
// @Summary  Counts by status, total time and completion rates
// @Tags     resources
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} map[string]interface{}
// @Router   /resources/stats [get]
func (h *ResourceHandler) Stats(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	stats, err := h.svc.Stats(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":      stats,
		"time_spent": domain.FormatMinutes(stats.TotalTimeSpent),
	})
}
