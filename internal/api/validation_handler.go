package api

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	jobbiz "github.com/emailvalidation9-a11y/backend/internal/biz/job"
)

// ValidationHandler 验证入口：单邮箱同步校验与批量CSV投递
type ValidationHandler struct {
	jobs *jobbiz.Usecase
}

func NewValidationHandler(jobs *jobbiz.Usecase) *ValidationHandler {
	return &ValidationHandler{jobs: jobs}
}

type validateSingleReq struct {
	Email      string `json:"email" binding:"required"`
	VerifySMTP *bool  `json:"verifySmtp"`
}

func (h *ValidationHandler) ValidateSingle(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	var req validateSingleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	verifySMTP := true
	if req.VerifySMTP != nil {
		verifySMTP = *req.VerifySMTP
	}

	result, acct, err := h.jobs.ValidateSingle(c.Request.Context(), owner, req.Email, verifySMTP)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result":           result,
		"creditsRemaining": acct.Credits,
	})
}

func (h *ValidationHandler) SubmitBulk(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "csv file is required"})
		return
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".csv") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only .csv uploads are accepted"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.Error(err)
		return
	}
	defer file.Close()

	j, err := h.jobs.SubmitBulk(c.Request.Context(), owner,
		fileHeader.Filename, fileHeader.Size, file, c.PostForm("webhookUrl"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusAccepted, toJobView(j))
}
