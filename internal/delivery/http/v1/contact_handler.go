package v1

import (
	"errors"
	"net/http"

	"go-contactform-backend/internal/composer"
	"go-contactform-backend/internal/delivery/http/response"
	"go-contactform-backend/internal/domain"
	"go-contactform-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	contactUC domain.ContactUsecase
}

// NewContactHandler registers the contact routes (public, no auth required)
func NewContactHandler(public *gin.RouterGroup, contactUC domain.ContactUsecase) {
	handler := &ContactHandler{
		contactUC: contactUC,
	}

	// Public Routes - NO authentication required
	public.POST("/contact", handler.SubmitContact)
}

// SubmitContact godoc
// @Summary      Submit Contact Form
// @Description  Send a message through the contact form. This is a public endpoint.
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        contact  body      domain.SubmittedFields  true  "Contact Form Data"
// @Success      200      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Failure      503      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /contact [post]
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	var fields domain.SubmittedFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	if err := h.contactUC.SendContactMessage(c.Request.Context(), c.Request, &fields); err != nil {
		var vf *domain.ValidationFailure
		if errors.As(err, &vf) {
			response.Error(c, http.StatusUnprocessableEntity, "Please correct the errors below.", vf.Fields)
			return
		}
		var cfgErr *composer.ConfigError
		if errors.As(err, &cfgErr) {
			c.Error(apperror.New(http.StatusServiceUnavailable, "Contact service temporarily unavailable", err))
			return
		}
		c.Error(apperror.New(http.StatusInternalServerError, "Failed to send message. Please try again later.", err))
		return
	}

	response.Success(c, http.StatusOK, "Your message has been sent successfully!", nil)
}
