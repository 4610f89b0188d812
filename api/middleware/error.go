package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/techdoc-assistant/api/model"
)

// 定义应用中的错误类型常量
const (
	ErrorTypeValidation = "VALIDATION_ERROR" // 输入验证错误
	ErrorTypeInternal   = "INTERNAL_ERROR"   // 内部服务器错误
)

// AppError 应用错误结构体
type AppError struct {
	Type    string // 错误类型
	Message string // 错误消息
	Details string // 详细错误信息
	Code    int    // HTTP状态码
}

// Error 实现error接口的方法
func (e AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// NewValidationError 创建输入验证错误
func NewValidationError(message string, details ...string) AppError {
	return AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Details: strings.Join(details, "; "),
		Code:    http.StatusBadRequest,
	}
}

// NewInternalError 创建内部服务器错误
func NewInternalError(message string, details ...string) AppError {
	return AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Details: strings.Join(details, "; "),
		Code:    http.StatusInternalServerError,
	}
}

// ErrorMiddleware 统一错误处理中间件
// 将处理器记录的错误转换为{"error": ...}响应体，并恢复panic
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				stack := string(debug.Stack())

				log.WithFields(logrus.Fields{
					"error": err,
					"stack": stack,
					"path":  c.Request.URL.Path,
				}).Error("Panic recovered in API request")

				c.AbortWithStatusJSON(http.StatusInternalServerError,
					model.NewErrorResponse("An unexpected error occurred"))
			}
		}()

		c.Next()

		if len(c.Errors) > 0 {
			// 取最后一个错误进行处理
			err := c.Errors.Last().Err

			switch e := err.(type) {
			case AppError:
				log.WithFields(logrus.Fields{
					"error_type": e.Type,
					"path":       c.Request.URL.Path,
				}).Error(e.Message)

				c.JSON(e.Code, model.NewErrorResponse(e.Message))

			case *AppError:
				log.WithFields(logrus.Fields{
					"error_type": e.Type,
					"path":       c.Request.URL.Path,
				}).Error(e.Message)

				c.JSON(e.Code, model.NewErrorResponse(e.Message))

			default:
				// 其他类型的错误一律作为内部服务器错误处理
				log.WithFields(logrus.Fields{
					"path": c.Request.URL.Path,
				}).Error(err.Error())

				message := "internal server error"
				if gin.Mode() == gin.DebugMode {
					message = err.Error()
				}
				c.JSON(http.StatusInternalServerError, model.NewErrorResponse(message))
			}

			c.Abort()
		}
	}
}

// HandleError 在处理器中使用的错误处理辅助函数
func HandleError(c *gin.Context, err error) {
	_ = c.Error(err)
}
