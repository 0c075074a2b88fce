package handler

import (
	"Local_Market/internal/middleware"
	"Local_Market/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// paramID 解析路径中的 id，格式错误 -> 400
func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := pkg.ParseID(c.Param(name))
	if err != nil {
		pkg.Fail(c, err)
		return uuid.Nil, false
	}
	return id, true
}

// actor Gate 之后必然存在；缺失说明路由没挂 Gate
func actor(c *gin.Context) (middleware.Actor, bool) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		pkg.Fail(c, pkg.ErrUnauthorized)
	}
	return a, ok
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		pkg.Fail(c, pkg.BadRequest("invalid params"))
		return false
	}
	return true
}
