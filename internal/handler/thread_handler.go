package handler

import (
	"net/http"
	"strconv"

	"Thread_Hive/internal/service"

	"github.com/gin-gonic/gin"
)

type ThreadHandler struct {
	svc *service.ThreadService
}

type CreateThreadReq struct {
	Cid     string `json:"cid"` // 可空：不挂社区的个人帖
	Content string `json:"content" binding:"required"`
}

type ReplyReq struct {
	Content string `json:"content" binding:"required"`
}

type EditThreadReq struct {
	Content string `json:"content" binding:"required"`
}

func NewThreadHandler(svc *service.ThreadService) *ThreadHandler {
	return &ThreadHandler{svc: svc}
}

// Create 发帖接口
func (h *ThreadHandler) Create(c *gin.Context) {
	var req CreateThreadReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	t, err := h.svc.Create(c.Request.Context(), callerUid(c), req.Cid, req.Content)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": t.ID})
}

// Reply 回帖接口
func (h *ThreadHandler) Reply(c *gin.Context) {
	parentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || parentID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid thread id"})
		return
	}

	var req ReplyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	t, err := h.svc.Reply(c.Request.Context(), parentID, callerUid(c), req.Content)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": t.ID, "parent_id": parentID})
}

func (h *ThreadHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid thread id"})
		return
	}

	t, children, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"thread": t, "children": children})
}

func (h *ThreadHandler) Edit(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid thread id"})
		return
	}

	var req EditThreadReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	t, err := h.svc.Edit(c.Request.Context(), id, callerUid(c), req.Content)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": t.ID, "content": t.Content})
}

// Delete 删帖接口（连同整棵回复树）
func (h *ThreadHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid thread id"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id, callerUid(c)); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

// ListByCommunity 社区帖子流（游标分页）
func (h *ThreadHandler) ListByCommunity(c *gin.Context) {
	cid := c.Param("cid")

	lastID, _ := strconv.ParseUint(c.Query("last_id"), 10, 64)
	lastTS, _ := strconv.ParseInt(c.Query("last_created_at"), 10, 64)
	limit, _ := strconv.Atoi(c.Query("limit"))

	list, err := h.svc.ListByCommunity(c.Request.Context(), cid, lastID, lastTS, limit)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"list": list})
}
