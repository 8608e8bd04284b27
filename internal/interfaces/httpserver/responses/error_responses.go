package responses

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/novelstudio/nai-gateway/internal/domain/imagegen"
	"github.com/novelstudio/nai-gateway/internal/utils/platformerrors"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error         string `json:"error"`
	Kind          string `json:"kind"`
	Code          string `json:"code,omitempty"` // UUID from PlatformError
	ErrorInstance error  `json:"-"`
	RequestID     string `json:"request_id,omitempty"`
}

// HandleError writes err as an ErrorResponse. Classified upstream errors only
// ever expose their generic public message.
func HandleError(reqCtx *gin.Context, err error, message string) {
	requestID := platformerrors.RequestIDFromContext(reqCtx.Request.Context())
	_ = reqCtx.Error(err)

	if ce, ok := imagegen.AsClassified(err); ok {
		reqCtx.AbortWithStatusJSON(ce.HTTPStatus(), ErrorResponse{
			Error:         ce.PublicMessage(),
			Kind:          string(ce.Kind),
			ErrorInstance: ce,
			RequestID:     requestID,
		})
		return
	}

	var platformErr *platformerrors.PlatformError
	if errors.As(err, &platformErr) {
		errorMessage := platformErr.Message
		if errorMessage == "" {
			errorMessage = message
		}
		if platformErr.RequestID != "" {
			requestID = platformErr.RequestID
		}
		reqCtx.AbortWithStatusJSON(platformerrors.ErrorTypeToHTTPStatus(platformErr.Type), ErrorResponse{
			Error:         errorMessage,
			Kind:          strings.ToLower(string(platformErr.Type)),
			Code:          platformErr.UUID,
			ErrorInstance: platformErr,
			RequestID:     requestID,
		})
		return
	}

	reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error:         message,
		Kind:          strings.ToLower(string(platformerrors.ErrorTypeInternal)),
		ErrorInstance: err,
		RequestID:     requestID,
	})
}

// HandleNewError creates a new typed error at the route layer and handles it
func HandleNewError(reqCtx *gin.Context, errorType platformerrors.ErrorType, message string, uuid string) {
	err := platformerrors.NewError(reqCtx.Request.Context(), platformerrors.LayerRoute, errorType, message, nil, uuid)
	HandleError(reqCtx, err, message)
}
