package response

import (
	"errors"
	"net/http"
	"runtime"

	"storeassist/domain/shared"
	"storeassist/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func captureStack(skip int) []string {
	var pcs [16]uintptr
	n := runtime.Callers(skip, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	stack := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		frame, more := frames.Next()
		if frame.Function != "" {
			stack = append(stack, frame.Function)
		}
		if !more {
			break
		}
	}
	return stack
}

// HandleError reports framework-level failures such as parameter
// binding.
func HandleError(c *gin.Context, err error, message string, code int) {
	requestID := GetRequestID(c)

	logger.Error(message,
		zap.String("request_id", requestID),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Int("status", code),
		zap.Error(err))

	c.JSON(code, &Response{
		Success:   false,
		Error:     "BAD_REQUEST",
		Message:   message,
		Code:      code,
		RequestID: requestID,
	})
}

// HandleDomainError maps domain sentinel errors to HTTP statuses and
// logs the point-of-failure stack when the error carries one.
func HandleDomainError(c *gin.Context, err error) {
	requestID := GetRequestID(c)
	code, httpStatus := classify(err)

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("error_code", code),
		zap.Int("http_status", httpStatus),
		zap.Strings("stack", extractStack(err)),
		zap.Error(err),
	}
	logger.Error(err.Error(), fields...)

	userMessage := err.Error()
	if httpStatus == http.StatusInternalServerError {
		userMessage = "internal server error"
	}

	c.JSON(httpStatus, &Response{
		Success:   false,
		Error:     code,
		Message:   userMessage,
		Code:      httpStatus,
		RequestID: requestID,
	})
}

func classify(err error) (string, int) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return "NOT_FOUND", http.StatusNotFound
	case errors.Is(err, shared.ErrConflict):
		return "CONFLICT", http.StatusConflict
	case errors.Is(err, shared.ErrInvalidInput):
		return "VALIDATION_ERROR", http.StatusBadRequest
	case errors.Is(err, shared.ErrForbidden):
		return "FORBIDDEN", http.StatusForbidden
	default:
		return "INTERNAL_ERROR", http.StatusInternalServerError
	}
}

func extractStack(err error) []string {
	var stacker shared.Stacker
	if errors.As(err, &stacker) {
		if stack := stacker.Stack(); len(stack) > 0 {
			return stack
		}
	}
	return captureStack(4)
}
