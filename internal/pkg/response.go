package pkg

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// OK 写出 {status:200, ...payload}，传输层状态码与 status 保持一致
func OK(c *gin.Context, payload gin.H) {
	Respond(c, http.StatusOK, payload)
}

func Respond(c *gin.Context, status int, payload gin.H) {
	body := gin.H{}
	for k, v := range payload {
		body[k] = v
	}
	body["status"] = status
	c.JSON(status, body)
}

// StatusOf 把领域错误映射到状态码
func StatusOf(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Fail 写出错误响应；内部错误只记录日志，不把存储/第三方的错误信息透给客户端
func Fail(c *gin.Context, err error) {
	status := StatusOf(err)
	body := gin.H{"msg": publicMessage(err, status)}
	if errors.Is(err, ErrReadModelUnresolved) {
		body["code"] = "read_model_unresolved"
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "path", c.FullPath(), "method", c.Request.Method, "error", err)
	}
	Respond(c, status, body)
}

func publicMessage(err error, status int) string {
	switch status {
	case http.StatusInternalServerError:
		if errors.Is(err, ErrReadModelUnresolved) {
			return ErrReadModelUnresolved.Error()
		}
		return ErrInternal.Error()
	case http.StatusBadRequest:
		// "bad request: xxx" -> "xxx"
		return strings.TrimPrefix(err.Error(), ErrBadRequest.Error()+": ")
	default:
		return http.StatusText(status)
	}
}
