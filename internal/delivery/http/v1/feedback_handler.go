package v1

import (
	"net/http"

	"job-tracker-backend/internal/delivery/http/response"
	"job-tracker-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type FeedbackHandler struct {
	feedbackUC domain.FeedbackUsecase
}

// NewFeedbackHandler registers the feedback routes (public, no auth required)
func NewFeedbackHandler(public *gin.RouterGroup, feedbackUC domain.FeedbackUsecase) {
	handler := &FeedbackHandler{feedbackUC: feedbackUC}

	feedback := public.Group("/feedback")
	{
		feedback.POST("", handler.Submit)
		feedback.GET("/public", handler.ListPublic)
	}
}

// SubmitFeedbackRequest has no visibility field; visibility follows the message type.
type SubmitFeedbackRequest struct {
	Name        string `json:"name" binding:"required,not_blank"`
	Email       string `json:"email" binding:"required,email"`
	MessageType string `json:"messageType" binding:"required,message_type"`
	Message     string `json:"message" binding:"required,not_blank"`
}

// Submit godoc
// @Summary      Submit feedback
// @Description  Send feedback, a question or a suggestion. This is a public endpoint.
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        body  body      SubmitFeedbackRequest  true  "Feedback"
// @Success      201   {object}  response.MessageBody
// @Failure      400   {object}  response.ErrorBody
// @Router       /feedback [post]
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req SubmitFeedbackRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.feedbackUC.Submit(c.Request.Context(), domain.FeedbackInput{
		Name:        req.Name,
		Email:       req.Email,
		MessageType: req.MessageType,
		Message:     req.Message,
	}); err != nil {
		c.Error(err)
		return
	}

	response.Message(c, http.StatusCreated, "Thank you for your feedback!")
}

// ListPublic godoc
// @Summary      Public testimonials
// @Description  Up to nine public feedback entries, newest first, without email addresses
// @Tags         feedback
// @Produce      json
// @Success      200  {array}  domain.FeedbackPublic
// @Router       /feedback/public [get]
func (h *FeedbackHandler) ListPublic(c *gin.Context) {
	items, err := h.feedbackUC.ListPublic(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}
