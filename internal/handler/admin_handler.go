package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/themestore/demoaccess/internal/model"
	"github.com/themestore/demoaccess/internal/service"
	"github.com/themestore/demoaccess/pkg/auth"
)

// AdminHandler handles the sales dashboard endpoints
type AdminHandler struct {
	adminService      *service.AdminService
	engagementService *service.EngagementService
	linkService       *service.DemoLinkService
}

func NewAdminHandler(adminService *service.AdminService, engagementService *service.EngagementService, linkService *service.DemoLinkService) *AdminHandler {
	return &AdminHandler{
		adminService:      adminService,
		engagementService: engagementService,
		linkService:       linkService,
	}
}

// Login godoc
// @Summary Dashboard login
// @Tags Admin
// @Accept json
// @Produce json
// @Param body body model.AdminLoginRequest true "Credentials"
// @Success 200 {object} model.AdminLoginResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /admin/login [post]
func (h *AdminHandler) Login(c *gin.Context) {
	var req model.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	token, user, err := h.adminService.Login(req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.AdminLoginResponse{Token: token, User: *user})
}

// Logout godoc
// @Summary Dashboard logout (revokes the session token)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.SuccessResponse
// @Router /admin/logout [post]
func (h *AdminHandler) Logout(c *gin.Context) {
	claims := c.MustGet("claims").(*auth.Claims)
	tokenString := c.GetString("token")

	if err := h.adminService.Logout(c.Request.Context(), tokenString, claims); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Logged out"})
}

// Leads godoc
// @Summary Lead list with latest link and watch progress
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {array} model.LeadOverview
// @Router /admin/leads [get]
func (h *AdminHandler) Leads(c *gin.Context) {
	from, ok := parseDateParam(c, "from", false)
	if !ok {
		return
	}
	to, ok := parseDateParam(c, "to", true)
	if !ok {
		return
	}

	rows, err := h.adminService.LeadOverview(from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// LeadDetail godoc
// @Summary Full engagement history for one lead
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lead ID"
// @Success 200 {object} model.LeadDetail
// @Failure 404 {object} model.ErrorResponse
// @Router /admin/leads/{id} [get]
func (h *AdminHandler) LeadDetail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid lead id"})
		return
	}

	detail, err := h.adminService.LeadDetail(uint(id))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// SaveFollowup godoc
// @Summary Create or update a sales follow-up
// @Description Marking the latest follow-up rescheduled is what authorizes a demo link reissue.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.SaveFollowupRequest true "Follow-up"
// @Success 200 {object} model.Followup
// @Failure 404 {object} model.ErrorResponse
// @Router /admin/followups [post]
func (h *AdminHandler) SaveFollowup(c *gin.Context) {
	var req model.SaveFollowupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	if req.CreatedBy == "" {
		req.CreatedBy = c.GetString("username")
	}

	followup, err := h.engagementService.SaveFollowup(&req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, followup)
}

// PendingQueries godoc
// @Summary Unanswered client questions, oldest first
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Query
// @Router /admin/queries [get]
func (h *AdminHandler) PendingQueries(c *gin.Context) {
	queries, err := h.engagementService.PendingQueries()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, queries)
}

// RespondQuery godoc
// @Summary Answer one client question (emails the lead)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.RespondQueryRequest true "Response"
// @Success 200 {object} model.Query
// @Failure 404 {object} model.ErrorResponse
// @Router /admin/queries/respond [post]
func (h *AdminHandler) RespondQuery(c *gin.Context) {
	var req model.RespondQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	query, err := h.engagementService.Respond(req.QueryID, req.Response)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, query)
}

// BulkRespond godoc
// @Summary Answer several questions with one response
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.BulkRespondRequest true "Query ids and response"
// @Success 200 {object} model.SuccessResponse
// @Router /admin/queries/bulk-respond [post]
func (h *AdminHandler) BulkRespond(c *gin.Context) {
	var req model.BulkRespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	n, err := h.engagementService.BulkRespond(req.QueryIDs, req.Response)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Responded to " + strconv.Itoa(n) + " query(ies)"})
}

// UserLogs godoc
// @Summary Paginated dashboard login/logout log
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param per_page query int false "Page size (default 20, max 100)"
// @Success 200 {object} model.PagedUserLogs
// @Router /admin/user-logs [get]
func (h *AdminHandler) UserLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	logs, err := h.adminService.UserLogs(page, perPage)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// Sweep godoc
// @Summary Expire all demo links past their TTL
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.SweepResponse
// @Router /admin/sweep [post]
func (h *AdminHandler) Sweep(c *gin.Context) {
	n, err := h.linkService.SweepExpired()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SweepResponse{Expired: n})
}

// parseDateParam reads an optional YYYY-MM-DD query parameter. endOfDay
// pushes the bound to 23:59:59 so "to" is inclusive.
func parseDateParam(c *gin.Context, name string, endOfDay bool) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid " + name + " date, use YYYY-MM-DD"})
		return nil, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return &t, true
}
