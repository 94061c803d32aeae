package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	serverbiz "github.com/emailvalidation9-a11y/backend/internal/biz/server"
)

// ServerHandler 验证引擎注册表的管理接口
type ServerHandler struct {
	servers *serverbiz.Usecase
}

func NewServerHandler(servers *serverbiz.Usecase) *ServerHandler {
	return &ServerHandler{servers: servers}
}

type createServerReq struct {
	Name   string `json:"name" binding:"required"`
	URL    string `json:"url" binding:"required"`
	Weight int    `json:"weight"`
}

type updateServerReq struct {
	Name     *string `json:"name"`
	URL      *string `json:"url"`
	Weight   *int    `json:"weight"`
	IsActive *bool   `json:"isActive"`
}

type setHealthReq struct {
	IsHealthy *bool `json:"isHealthy" binding:"required"`
}

type testServerReq struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (h *ServerHandler) List(c *gin.Context) {
	if _, ok := ownerID(c); !ok {
		return
	}

	filter := serverbiz.ListFilter{Search: c.Query("search")}
	if raw := c.Query("isActive"); raw != "" {
		active := raw == "true"
		filter.IsActive = &active
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	filter.Normalize()

	items, total, err := h.servers.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, PageView[ServerView]{
		Items: lo.Map(items, func(s *serverbiz.Server, _ int) ServerView { return toServerView(s) }),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	})
}

func (h *ServerHandler) Create(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	var req createServerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, err := h.servers.Create(c.Request.Context(), serverbiz.CreateRequest{
		Name:      req.Name,
		URL:       req.URL,
		Weight:    req.Weight,
		CreatedBy: owner,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, toServerView(s))
}

func (h *ServerHandler) Get(c *gin.Context) {
	if _, ok := ownerID(c); !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	s, err := h.servers.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toServerView(s))
}

func (h *ServerHandler) Update(c *gin.Context) {
	if _, ok := ownerID(c); !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateServerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, err := h.servers.Update(c.Request.Context(), id, serverbiz.UpdateRequest{
		Name:     req.Name,
		URL:      req.URL,
		Weight:   req.Weight,
		IsActive: req.IsActive,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toServerView(s))
}

func (h *ServerHandler) Delete(c *gin.Context) {
	if _, ok := ownerID(c); !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.servers.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "server deleted"})
}

// SetHealth 手动翻转健康位，下一轮巡检可能再翻回来
func (h *ServerHandler) SetHealth(c *gin.Context) {
	if _, ok := ownerID(c); !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req setHealthReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, err := h.servers.SetHealth(c.Request.Context(), id, *req.IsHealthy)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toServerView(s))
}

// Test 即时探活。可按注册表ID或裸URL测试，两者必传其一。
func (h *ServerHandler) Test(c *gin.Context) {
	if _, ok := ownerID(c); !ok {
		return
	}
	var req testServerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ID == "" && req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "either id or url is required"})
		return
	}

	var id uint64
	if req.ID != "" {
		parsed, err := strconv.ParseUint(req.ID, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}
		id = parsed
	}

	result, err := h.servers.Test(c.Request.Context(), id, req.URL)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}
