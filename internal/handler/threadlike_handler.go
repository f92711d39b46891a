package handler

import (
	"net/http"
	"strconv"

	"Thread_Hive/internal/service"

	"github.com/gin-gonic/gin"
)

type ThreadLikeHandler struct {
	svc *service.ThreadLikeService
}

func NewThreadLikeHandler(svc *service.ThreadLikeService) *ThreadLikeHandler {
	return &ThreadLikeHandler{svc: svc}
}

// Toggle 点赞开关：已赞则取消，未赞则点上，返回切换后的状态和计数
func (h *ThreadLikeHandler) Toggle(c *gin.Context) {
	threadID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || threadID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid thread id"})
		return
	}

	liked, count, err := h.svc.Toggle(c.Request.Context(), callerUid(c), threadID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked, "like_count": count})
}

// Status 查询当前用户对帖子的点赞状态和计数
func (h *ThreadLikeHandler) Status(c *gin.Context) {
	threadID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || threadID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid thread id"})
		return
	}

	liked, err := h.svc.IsLiked(c.Request.Context(), callerUid(c), threadID)
	if err != nil {
		fail(c, err)
		return
	}
	count, err := h.svc.GetCount(c.Request.Context(), threadID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked, "like_count": count})
}
