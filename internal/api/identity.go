package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// accountHeader 调用方身份。认证网关是外部协作方，网关校验后把账户ID
// 透传到这个头里。
const accountHeader = "X-Account-ID"

// ownerID 从请求头取账户ID，缺失或非法时直接写401并返回false
func ownerID(c *gin.Context) (uint64, bool) {
	raw := c.GetHeader(accountHeader)
	if raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing " + accountHeader + " header"})
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid " + accountHeader + " header"})
		return 0, false
	}
	return id, true
}

// pathID 解析路径里的资源ID
func pathID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
