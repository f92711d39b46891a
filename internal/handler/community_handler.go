package handler

import (
	"net/http"
	"strconv"

	"Thread_Hive/internal/service"

	"github.com/gin-gonic/gin"
)

type CommunityHandler struct {
	svc *service.CommunityService
}

type CommunityCreateReq struct {
	Cid       string `json:"cid" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
	JoinMode  string `json:"join_mode"`
}

type CommunityUpdateReq struct {
	Name      *string `json:"name"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
	JoinMode  *string `json:"join_mode"`
}

func NewCommunityHandler(svc *service.CommunityService) *CommunityHandler {
	return &CommunityHandler{svc: svc}
}

func (h *CommunityHandler) Create(c *gin.Context) {
	var req CommunityCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	community, err := h.svc.Create(c.Request.Context(), callerUid(c), req.Cid, req.Name, req.Bio, req.AvatarURL, req.JoinMode)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cid":       community.Cid,
		"name":      community.Name,
		"join_mode": community.JoinMode,
	})
}

func (h *CommunityHandler) Get(c *gin.Context) {
	community, err := h.svc.Get(c.Request.Context(), c.Param("cid"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, community)
}

func (h *CommunityHandler) Update(c *gin.Context) {
	var req CommunityUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}
	if req.JoinMode != nil {
		updates["join_mode"] = *req.JoinMode
	}

	community, err := h.svc.UpdateInfo(c.Request.Context(), callerUid(c), c.Param("cid"), updates)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, community)
}

func (h *CommunityHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), callerUid(c), c.Param("cid")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommunityHandler) Join(c *gin.Context) {
	pending, err := h.svc.Join(c.Request.Context(), callerUid(c), c.Param("cid"))
	if err != nil {
		fail(c, err)
		return
	}
	if pending {
		c.JSON(http.StatusOK, gin.H{"msg": "request pending"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "joined"})
}

func (h *CommunityHandler) Leave(c *gin.Context) {
	if err := h.svc.Leave(c.Request.Context(), callerUid(c), c.Param("cid")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommunityHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))

	list, err := h.svc.List(c.Request.Context(), page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *CommunityHandler) Members(c *gin.Context) {
	list, err := h.svc.ListMembers(c.Request.Context(), c.Param("cid"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *CommunityHandler) RemoveMember(c *gin.Context) {
	if err := h.svc.RemoveMember(c.Request.Context(), callerUid(c), c.Param("cid"), c.Param("uid")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommunityHandler) AddModerator(c *gin.Context) {
	if err := h.svc.AddModerator(c.Request.Context(), callerUid(c), c.Param("cid"), c.Param("uid")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommunityHandler) RemoveModerator(c *gin.Context) {
	if err := h.svc.RemoveModerator(c.Request.Context(), callerUid(c), c.Param("cid"), c.Param("uid")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommunityHandler) Invite(c *gin.Context) {
	if err := h.svc.Invite(c.Request.Context(), callerUid(c), c.Param("cid"), c.Param("uid")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommunityHandler) AcceptInvite(c *gin.Context) {
	if err := h.svc.AcceptInvite(c.Request.Context(), callerUid(c), c.Param("cid")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "joined"})
}

func (h *CommunityHandler) RejectInvite(c *gin.Context) {
	if err := h.svc.RejectInvite(c.Request.Context(), callerUid(c), c.Param("cid")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommunityHandler) MyInvites(c *gin.Context) {
	list, err := h.svc.ListInvitesForUser(c.Request.Context(), callerUid(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *CommunityHandler) Requests(c *gin.Context) {
	list, err := h.svc.ListRequests(c.Request.Context(), callerUid(c), c.Param("cid"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *CommunityHandler) AcceptRequest(c *gin.Context) {
	if err := h.svc.AcceptRequest(c.Request.Context(), callerUid(c), c.Param("cid"), c.Param("uid")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommunityHandler) RejectRequest(c *gin.Context) {
	if err := h.svc.RejectRequest(c.Request.Context(), callerUid(c), c.Param("cid"), c.Param("uid")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}
