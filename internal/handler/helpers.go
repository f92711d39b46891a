package handler

import (
	"Thread_Hive/internal/middleware"
	"Thread_Hive/internal/pkg"

	"github.com/gin-gonic/gin"
)

// fail 统一错误出口：Invalid->400，NotFound->404，Conflict->409，
// 未分类错误一律 500，不向调用方假装是参数问题
func fail(c *gin.Context, err error) {
	c.JSON(pkg.HTTPStatus(err), gin.H{"msg": err.Error()})
}

// callerUid 认证中间件注入的调用者别名
func callerUid(c *gin.Context) string {
	v, _ := c.Get(middleware.ContextUidKey)
	uid, _ := v.(string)
	return uid
}

func callerID(c *gin.Context) uint64 {
	v, _ := c.Get(middleware.ContextUserIDKey)
	id, _ := v.(uint64)
	return id
}
