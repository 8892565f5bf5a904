package v1

import (
	"net/http"

	"job-tracker-backend/internal/delivery/http/middleware"
	"job-tracker-backend/internal/delivery/http/response"
	"job-tracker-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	applicationUC domain.ApplicationUsecase
}

// NewApplicationHandler registers application routes. All of them require a session.
func NewApplicationHandler(protected *gin.RouterGroup, applicationUC domain.ApplicationUsecase) {
	handler := &ApplicationHandler{applicationUC: applicationUC}

	applications := protected.Group("/applications")
	{
		applications.GET("", handler.List)
		applications.POST("", handler.Create)
		applications.GET("/:id", handler.Get)
		applications.PUT("/:id", handler.Update)
		applications.DELETE("/:id", handler.Delete)
	}
}

type CreateApplicationRequest struct {
	Company         string `json:"company" binding:"required,not_blank"`
	Role            string `json:"role" binding:"required,not_blank"`
	Status          string `json:"status" binding:"app_status"`
	ApplicationDate string `json:"applicationDate"`
	Link            string `json:"link"`
	Location        string `json:"location"`
	Salary          string `json:"salary"`
}

// UpdateApplicationRequest only carries the fields a PUT may change.
type UpdateApplicationRequest struct {
	Status   string `json:"status" binding:"app_status"`
	Location string `json:"location"`
	Salary   string `json:"salary"`
}

// List godoc
// @Summary      List my applications
// @Description  Applications owned by the caller, newest application date first
// @Tags         applications
// @Produce      json
// @Param        status  query     string  false  "Filter by status"  Enums(Applied, Interview, Offer, Rejected)
// @Success      200     {array}   domain.Application
// @Failure      400     {object}  response.ErrorBody
// @Failure      401     {object}  response.ErrorBody
// @Router       /applications [get]
// @Security     SessionCookie
func (h *ApplicationHandler) List(c *gin.Context) {
	apps, err := h.applicationUC.List(c.Request.Context(), middleware.GetIdentity(c), c.Query("status"))
	if err != nil {
		c.Error(err)
		return
	}
	response.JSON(c, http.StatusOK, apps)
}

// Get godoc
// @Summary      Get application
// @Tags         applications
// @Produce      json
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  domain.Application
// @Failure      401  {object}  response.ErrorBody
// @Failure      404  {object}  response.ErrorBody
// @Router       /applications/{id} [get]
// @Security     SessionCookie
func (h *ApplicationHandler) Get(c *gin.Context) {
	app, err := h.applicationUC.Get(c.Request.Context(), middleware.GetIdentity(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.JSON(c, http.StatusOK, app)
}

// Create godoc
// @Summary      Create application
// @Description  Status defaults to Applied and the application date to now
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        body  body      CreateApplicationRequest  true  "Application data"
// @Success      201   {object}  domain.Application
// @Failure      400   {object}  response.ErrorBody
// @Failure      401   {object}  response.ErrorBody
// @Router       /applications [post]
// @Security     SessionCookie
func (h *ApplicationHandler) Create(c *gin.Context) {
	var req CreateApplicationRequest
	if !bindJSON(c, &req) {
		return
	}

	date, err := parseDate(req.ApplicationDate)
	if err != nil {
		c.Error(err)
		return
	}

	app, err := h.applicationUC.Create(c.Request.Context(), middleware.GetIdentity(c), domain.ApplicationInput{
		Company:         req.Company,
		Role:            req.Role,
		Status:          req.Status,
		ApplicationDate: date,
		Link:            req.Link,
		Location:        req.Location,
		Salary:          req.Salary,
	})
	if err != nil {
		c.Error(err)
		return
	}
	response.JSON(c, http.StatusCreated, app)
}

// Update godoc
// @Summary      Update application
// @Description  Partial update of status, location and salary
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true  "Application ID"
// @Param        body  body      UpdateApplicationRequest  true  "Fields to change"
// @Success      200   {object}  domain.Application
// @Failure      400   {object}  response.ErrorBody
// @Failure      404   {object}  response.ErrorBody
// @Router       /applications/{id} [put]
// @Security     SessionCookie
func (h *ApplicationHandler) Update(c *gin.Context) {
	var req UpdateApplicationRequest
	if !bindJSON(c, &req) {
		return
	}

	app, err := h.applicationUC.Update(c.Request.Context(), middleware.GetIdentity(c), c.Param("id"), domain.ApplicationPatch{
		Status:   req.Status,
		Location: req.Location,
		Salary:   req.Salary,
	})
	if err != nil {
		c.Error(err)
		return
	}
	response.JSON(c, http.StatusOK, app)
}

// Delete godoc
// @Summary      Delete application
// @Tags         applications
// @Produce      json
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  response.MessageBody
// @Failure      404  {object}  response.ErrorBody
// @Router       /applications/{id} [delete]
// @Security     SessionCookie
func (h *ApplicationHandler) Delete(c *gin.Context) {
	if err := h.applicationUC.Delete(c.Request.Context(), middleware.GetIdentity(c), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Message(c, http.StatusOK, "Application deleted")
}
