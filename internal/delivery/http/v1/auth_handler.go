package v1

import (
	"net/http"

	"job-tracker-backend/internal/delivery/http/middleware"
	"job-tracker-backend/internal/delivery/http/response"
	"job-tracker-backend/internal/domain"
	"job-tracker-backend/pkg/apperror"
	"job-tracker-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUC domain.AuthUsecase
	cookie middleware.SessionCookie
	audit  *security.AuditLogger
}

// NewAuthHandler registers the auth routes. authLimit guards the
// credential endpoints.
func NewAuthHandler(public, protected *gin.RouterGroup, authUC domain.AuthUsecase, cookie middleware.SessionCookie, audit *security.AuditLogger, authLimit gin.HandlerFunc) {
	handler := &AuthHandler{
		authUC: authUC,
		cookie: cookie,
		audit:  audit,
	}

	publicAuth := public.Group("/auth")
	{
		publicAuth.POST("/register", authLimit, handler.Register)
		publicAuth.POST("/login", authLimit, handler.Login)
		// Logout works with or without a live session.
		publicAuth.POST("/logout", handler.Logout)
	}

	protectedAuth := protected.Group("/auth")
	{
		protectedAuth.GET("/current-user", handler.CurrentUser)
	}

	protected.PUT("/users/change-password", handler.ChangePassword)
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,not_blank"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// Register godoc
// @Summary      User Registration
// @Description  Create an account and start a session. The session cookie is set on success.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        register  body      RegisterRequest  true  "Registration Details"
// @Success      201       {object}  domain.UserPublic
// @Failure      400       {object}  response.ErrorBody
// @Failure      429       {object}  response.ErrorBody
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authUC.Register(c.Request.Context(), domain.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.cookie.Set(c, result.Session.ID); err != nil {
		c.Error(apperror.Internal(err))
		return
	}

	h.log(c, security.AuditEvent{Event: security.EventRegister, UserID: result.User.ID, Email: result.User.Email})
	response.JSON(c, http.StatusCreated, result.User)
}

// Login godoc
// @Summary      User Login
// @Description  Verify credentials and start a session. Unknown email and wrong password fail identically.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        login  body      LoginRequest  true  "Login Credentials"
// @Success      200    {object}  domain.UserPublic
// @Failure      400    {object}  response.ErrorBody
// @Failure      429    {object}  response.ErrorBody
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authUC.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if apperror.Is(err, apperror.ErrInvalidCredentials) {
			h.log(c, security.AuditEvent{Event: security.EventLoginFailed, Email: req.Email, Reason: "invalid_credentials"})
		}
		c.Error(err)
		return
	}

	if err := h.cookie.Set(c, result.Session.ID); err != nil {
		c.Error(apperror.Internal(err))
		return
	}

	h.log(c, security.AuditEvent{Event: security.EventLoginSuccess, UserID: result.User.ID, Email: result.User.Email})
	response.JSON(c, http.StatusOK, result.User)
}

// CurrentUser godoc
// @Summary      Current user
// @Description  Return the user behind the session cookie, re-read from the database.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.UserPublic
// @Failure      401  {object}  response.ErrorBody
// @Router       /auth/current-user [get]
// @Security     SessionCookie
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	user, err := h.authUC.CurrentUser(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.JSON(c, http.StatusOK, user)
}

// Logout godoc
// @Summary      Logout
// @Description  Destroy the session and clear the cookie. Succeeds without a session too.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.MessageBody
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID := middleware.OptionalSessionID(c, h.cookie)
	if err := h.authUC.Logout(c.Request.Context(), sessionID); err != nil {
		c.Error(err)
		return
	}

	h.cookie.Clear(c)
	if sessionID != "" {
		h.log(c, security.AuditEvent{Event: security.EventLogout})
	}
	response.Message(c, http.StatusOK, "Logged out successfully")
}

// ChangePassword godoc
// @Summary      Change password
// @Description  Replace the password after verifying the current one. The session stays valid.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      ChangePasswordRequest  true  "Current and new password"
// @Success      200   {object}  response.MessageBody
// @Failure      400   {object}  response.ErrorBody
// @Failure      401   {object}  response.ErrorBody
// @Router       /users/change-password [put]
// @Security     SessionCookie
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	identity := middleware.GetIdentity(c)
	if err := h.authUC.ChangePassword(c.Request.Context(), identity, req.CurrentPassword, req.NewPassword); err != nil {
		c.Error(err)
		return
	}

	h.log(c, security.AuditEvent{Event: security.EventPasswordChanged, UserID: identity.UserID, Email: identity.Email})
	response.Message(c, http.StatusOK, "Password updated successfully")
}

func (h *AuthHandler) log(c *gin.Context, ev security.AuditEvent) {
	ev.IP = c.ClientIP()
	ev.UserAgent = c.Request.UserAgent()
	ev.RequestID = response.RequestID(c)
	ev.Path = c.FullPath()
	h.audit.Log(c.Request.Context(), ev)
}
