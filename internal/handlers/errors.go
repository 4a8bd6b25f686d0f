package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"attendance-app-server/internal/messaging"
	"attendance-app-server/internal/utils"
)

// respondDomainError maps a messaging domain error onto the HTTP status
// taxonomy: 400 validation/attachment, 403 permission, 404 not found,
// 500 persistence.
func respondDomainError(c *gin.Context, err error) {
	var (
		validation *messaging.ValidationError
		permission *messaging.PermissionError
		notFound   *messaging.NotFoundError
		attachment *messaging.AttachmentRejectedError
	)
	switch {
	case errors.As(err, &validation):
		utils.ErrorWithReason(c, http.StatusBadRequest, validation.Error(), validation.Reason)
	case errors.As(err, &attachment):
		utils.ErrorWithReason(c, http.StatusBadRequest, attachment.Error(), "attachment_rejected")
	case errors.As(err, &permission):
		utils.ErrorWithReason(c, http.StatusForbidden, permission.Message, permission.Reason)
	case errors.As(err, &notFound):
		utils.ErrorWithReason(c, http.StatusNotFound, notFound.Error(), notFound.Reason)
	default:
		utils.InternalServerError(c, err.Error())
	}
}
