package api

import (
	"time"

	"github.com/emailvalidation9-a11y/backend/internal/biz/job"
	"github.com/emailvalidation9-a11y/backend/internal/biz/server"
)

// ServerView 注册表条目的对外表示
type ServerView struct {
	ID              uint64     `json:"id,string"`
	Name            string     `json:"name"`
	URL             string     `json:"url"`
	IsActive        bool       `json:"isActive"`
	IsHealthy       bool       `json:"isHealthy"`
	Weight          int        `json:"weight"`
	LastHealthCheck *time.Time `json:"lastHealthCheck"`
	TotalRequests   int64      `json:"totalRequests"`
	SuccessRate     float64    `json:"successRate"`
	AvgResponseTime float64    `json:"avgResponseTime"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func toServerView(s *server.Server) ServerView {
	return ServerView{
		ID:              s.ID,
		Name:            s.Name,
		URL:             s.URL,
		IsActive:        s.IsActive,
		IsHealthy:       s.IsHealthy,
		Weight:          s.Weight,
		LastHealthCheck: s.LastHealthCheck,
		TotalRequests:   s.TotalRequests,
		SuccessRate:     s.SuccessRate,
		AvgResponseTime: s.AvgResponseTime,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// JobView 作业的对外表示
type JobView struct {
	ID                 uint64          `json:"id,string"`
	Type               job.JobType     `json:"type"`
	Status             job.JobStatus   `json:"status"`
	Source             string          `json:"source,omitempty"`
	TotalEmails        int             `json:"totalEmails"`
	ProcessedEmails    int             `json:"processedEmails"`
	ProgressPercentage int             `json:"progressPercentage"`
	ValidCount         int             `json:"validCount"`
	InvalidCount       int             `json:"invalidCount"`
	CatchAllCount      int             `json:"catchAllCount"`
	DisposableCount    int             `json:"disposableCount"`
	RoleBasedCount     int             `json:"roleBasedCount"`
	UnknownCount       int             `json:"unknownCount"`
	CreditsUsed        int64           `json:"creditsUsed"`
	WebhookSent        bool            `json:"webhookSent"`
	ErrorMessage       string          `json:"errorMessage,omitempty"`
	FileInfo           *job.FileInfo   `json:"fileInfo,omitempty"`
	ResultFile         *job.ResultFile `json:"resultFile,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	CompletedAt        *time.Time      `json:"completedAt"`
}

func toJobView(j *job.Job) JobView {
	return JobView{
		ID:                 j.ID,
		Type:               j.Type,
		Status:             j.Status,
		Source:             j.Source,
		TotalEmails:        j.TotalEmails,
		ProcessedEmails:    j.ProcessedEmails,
		ProgressPercentage: j.ProgressPercentage,
		ValidCount:         j.ValidCount,
		InvalidCount:       j.InvalidCount,
		CatchAllCount:      j.CatchAllCount,
		DisposableCount:    j.DisposableCount,
		RoleBasedCount:     j.RoleBasedCount,
		UnknownCount:       j.UnknownCount,
		CreditsUsed:        j.CreditsUsed,
		WebhookSent:        j.WebhookSent,
		ErrorMessage:       j.ErrorMessage,
		FileInfo:           j.FileInfo,
		ResultFile:         j.ResultFile,
		CreatedAt:          j.CreatedAt,
		CompletedAt:        j.CompletedAt,
	}
}

// PageView 列表响应的分页封套
type PageView[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}
