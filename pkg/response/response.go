package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error kinds shared by every failure envelope.
const (
	KindValidation   = "validation"
	KindConflict     = "conflict"
	KindNotFound     = "not_found"
	KindDependency   = "dependency"
	KindUnauthorized = "unauthorized"
	KindForbidden    = "forbidden"
	KindInternal     = "internal"
)

type APIResponse struct {
	Code    string      `json:"code"`
	Kind    string      `json:"kind,omitempty"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Coded is implemented by errors that carry a kind and a stable machine code.
type Coded interface {
	error
	ErrorKind() string
	ErrorCode() string
	PublicMessage() string
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Code: "ok", Message: "ok", Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Code: "ok", Message: "created", Data: data})
}

func Error(c *gin.Context, httpStatus int, kind, code, message string) {
	c.JSON(httpStatus, APIResponse{Code: code, Kind: kind, Message: message})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, KindValidation, "INVALID_REQUEST", message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, KindUnauthorized, "UNAUTHORIZED", message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, KindForbidden, "FORBIDDEN", message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, KindNotFound, "NOT_FOUND", message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, KindInternal, "INTERNAL_ERROR", message)
}

// FromError writes the envelope for err. Errors without a kind become a 500
// and never expose their text.
func FromError(c *gin.Context, err error) {
	var coded Coded
	if !errors.As(err, &coded) {
		InternalError(c, "internal server error")
		return
	}
	Error(c, StatusForKind(coded.ErrorKind()), coded.ErrorKind(), coded.ErrorCode(), coded.PublicMessage())
}

func StatusForKind(kind string) int {
	switch kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
