package responses

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ucmodeler/internal/errs"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func Success(c *gin.Context, statusCode int, data interface{}, message string) {
	c.JSON(statusCode, APIResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

func Fail(c *gin.Context, statusCode int, err error, message string) {
	resp := APIResponse{
		Status:  "error",
		Message: message,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(statusCode, resp)
}

// missingData lists the settings behind a Configuration error so the page
// can point at the empty form fields.
type missingData struct {
	Missing []string `json:"missing"`
}

// Error writes err with the status of its kind. The message is the warehouse
// or validation message as is.
func Error(c *gin.Context, err error) {
	ErrorData(c, err, nil)
}

// ErrorData is Error with a payload, such as the statement that failed.
func ErrorData(c *gin.Context, err error, data interface{}) {
	kind := errs.KindOf(err)

	resp := APIResponse{
		Status:  "error",
		Message: message(kind),
		Data:    data,
		Error:   err.Error(),
	}
	if missing := errs.MissingOf(err); len(missing) > 0 {
		resp.Data = missingData{Missing: missing}
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(errs.HTTPStatus(kind), resp)
}

func message(kind errs.Kind) string {
	switch kind {
	case errs.Configuration:
		return "Connection is not configured"
	case errs.Validation:
		return "Invalid request"
	case errs.NotFound:
		return "Not found"
	case errs.Execution:
		return "Statement failed"
	case errs.MetadataQuery:
		return "Failed to read catalog metadata"
	case errs.RenderUnavailable, errs.RenderFailed:
		return "Failed to render diagram"
	default:
		return http.StatusText(http.StatusInternalServerError)
	}
}
