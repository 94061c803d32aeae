package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	jobbiz "github.com/emailvalidation9-a11y/backend/internal/biz/job"
)

// JobHandler 作业查询：轮询、结果、导出、取消
type JobHandler struct {
	jobs *jobbiz.Usecase
}

func NewJobHandler(jobs *jobbiz.Usecase) *JobHandler {
	return &JobHandler{jobs: jobs}
}

func (h *JobHandler) List(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	items, total, err := h.jobs.List(c.Request.Context(), owner, page, limit)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, PageView[JobView]{
		Items: lo.Map(items, func(j *jobbiz.Job, _ int) JobView { return toJobView(j) }),
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// Poll 每次GET都会触发一次远端状态合并
func (h *JobHandler) Poll(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	j, err := h.jobs.Poll(c.Request.Context(), owner, id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toJobView(j))
}

// Results 引擎返回的明细原样透传，字段结构由引擎版本决定
func (h *JobHandler) Results(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	results, err := h.jobs.Results(c.Request.Context(), owner, id)
	if err != nil {
		c.Error(err)
		return
	}
	c.Data(http.StatusOK, "application/json", results)
}

func (h *JobHandler) ExportCSV(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	data, err := h.jobs.ExportCSV(c.Request.Context(), owner, id)
	if err != nil {
		c.Error(err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=job-%d-results.csv", id))
	c.Data(http.StatusOK, "text/csv", data)
}

func (h *JobHandler) Cancel(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	j, err := h.jobs.Cancel(c.Request.Context(), owner, id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toJobView(j))
}
