package v1

import (
	"net/http"

	"job-tracker-backend/internal/delivery/http/middleware"
	"job-tracker-backend/internal/delivery/http/response"
	"job-tracker-backend/internal/domain"
	"job-tracker-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	profileUC      domain.ProfileUsecase
	cookie         middleware.SessionCookie
	maxUploadBytes int64
}

// NewUserHandler registers profile routes. uploadLimit guards the two upload endpoints.
func NewUserHandler(protected *gin.RouterGroup, profileUC domain.ProfileUsecase, cookie middleware.SessionCookie, maxUploadBytes int64, uploadLimit gin.HandlerFunc) {
	handler := &UserHandler{
		profileUC:      profileUC,
		cookie:         cookie,
		maxUploadBytes: maxUploadBytes,
	}

	users := protected.Group("/users")
	{
		users.GET("/profile", handler.GetProfile)
		users.PUT("/profile", handler.UpdateProfile)
		users.GET("/current-user", handler.CurrentUser)
		users.POST("/upload-image", uploadLimit, handler.UploadImage)
		users.DELETE("/profile/picture", handler.DeleteProfilePicture)
		users.POST("/upload-resume", uploadLimit, handler.UploadResume)
		users.DELETE("/resume", handler.DeleteResume)
	}
}

// UpdateProfileRequest uses pointers so an absent field is left untouched.
type UpdateProfileRequest struct {
	Name *string `json:"name"`
	Bio  *string `json:"bio"`
}

type UploadImageResponse struct {
	URL string `json:"url"`
}

// GetProfile godoc
// @Summary      Get profile
// @Tags         users
// @Produce      json
// @Success      200  {object}  domain.UserProfile
// @Failure      401  {object}  response.ErrorBody
// @Router       /users/profile [get]
// @Security     SessionCookie
func (h *UserHandler) GetProfile(c *gin.Context) {
	profile, err := h.profileUC.GetProfile(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.JSON(c, http.StatusOK, profile)
}

// UpdateProfile godoc
// @Summary      Update profile
// @Description  Change name and/or bio. A blank name is ignored; bio may be cleared.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      UpdateProfileRequest  true  "Profile fields"
// @Success      200   {object}  domain.UserProfile
// @Failure      400   {object}  response.ErrorBody
// @Failure      401   {object}  response.ErrorBody
// @Router       /users/profile [put]
// @Security     SessionCookie
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.profileUC.UpdateProfile(c.Request.Context(), middleware.GetIdentity(c), domain.ProfileUpdate{
		Name: req.Name,
		Bio:  req.Bio,
	})
	h.respondProfile(c, profile, err)
}

// CurrentUser godoc
// @Summary      Session snapshot
// @Description  The identity stored in the session, without a database read
// @Tags         users
// @Produce      json
// @Success      200  {object}  domain.SessionPayload
// @Failure      401  {object}  response.ErrorBody
// @Router       /users/current-user [get]
// @Security     SessionCookie
func (h *UserHandler) CurrentUser(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	response.JSON(c, http.StatusOK, domain.SessionPayload{
		UserID: identity.UserID,
		Name:   identity.Name,
		Email:  identity.Email,
	})
}

// UploadImage godoc
// @Summary      Upload profile picture
// @Description  JPEG, PNG or WEBP up to the upload limit. Stored as a 500x500 JPEG.
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Image file"
// @Success      200   {object}  UploadImageResponse
// @Failure      400   {object}  response.ErrorBody
// @Failure      502   {object}  response.ErrorBody
// @Router       /users/upload-image [post]
// @Security     SessionCookie
func (h *UserHandler) UploadImage(c *gin.Context) {
	file, err := readUpload(c, "file", h.maxUploadBytes)
	if err != nil {
		c.Error(err)
		return
	}

	identity := middleware.GetIdentity(c)
	url, err := h.profileUC.UploadImage(c.Request.Context(), identity, file)
	if err != nil {
		c.Error(err)
		return
	}

	h.renewCookie(c, identity)
	response.JSON(c, http.StatusOK, UploadImageResponse{URL: url})
}

// DeleteProfilePicture godoc
// @Summary      Remove profile picture
// @Tags         users
// @Produce      json
// @Success      200  {object}  domain.UserProfile
// @Failure      401  {object}  response.ErrorBody
// @Router       /users/profile/picture [delete]
// @Security     SessionCookie
func (h *UserHandler) DeleteProfilePicture(c *gin.Context) {
	profile, err := h.profileUC.DeleteProfilePicture(c.Request.Context(), middleware.GetIdentity(c))
	h.respondProfile(c, profile, err)
}

// UploadResume godoc
// @Summary      Upload resume
// @Description  PDF up to the upload limit
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        resume  formData  file  true  "Resume PDF"
// @Success      200     {object}  domain.UserProfile
// @Failure      400     {object}  response.ErrorBody
// @Failure      502     {object}  response.ErrorBody
// @Router       /users/upload-resume [post]
// @Security     SessionCookie
func (h *UserHandler) UploadResume(c *gin.Context) {
	file, err := readUpload(c, "resume", h.maxUploadBytes)
	if err != nil {
		c.Error(err)
		return
	}

	profile, err := h.profileUC.UploadResume(c.Request.Context(), middleware.GetIdentity(c), file)
	h.respondProfile(c, profile, err)
}

// DeleteResume godoc
// @Summary      Remove resume
// @Tags         users
// @Produce      json
// @Success      200  {object}  domain.UserProfile
// @Failure      401  {object}  response.ErrorBody
// @Router       /users/resume [delete]
// @Security     SessionCookie
func (h *UserHandler) DeleteResume(c *gin.Context) {
	profile, err := h.profileUC.DeleteResume(c.Request.Context(), middleware.GetIdentity(c))
	h.respondProfile(c, profile, err)
}

func (h *UserHandler) respondProfile(c *gin.Context, profile *domain.UserProfile, err error) {
	if err != nil {
		c.Error(err)
		return
	}
	h.renewCookie(c, middleware.GetIdentity(c))
	response.JSON(c, http.StatusOK, profile)
}

// renewCookie reissues the cookie for the same session so its Max-Age
// follows the TTL renewed by the payload rewrite. The change it follows is
// already stored, so a failure leaves the old cookie in place.
func (h *UserHandler) renewCookie(c *gin.Context, identity domain.Identity) {
	if identity.SessionID == "" {
		return
	}
	if err := h.cookie.Set(c, identity.SessionID); err != nil {
		logger.Log.Warn("session cookie not renewed",
			"user_id", identity.UserID,
			"request_id", response.RequestID(c),
			"error", err,
		)
	}
}
