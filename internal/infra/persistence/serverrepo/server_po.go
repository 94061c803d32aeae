package serverrepo

import (
	"time"

	"github.com/emailvalidation9-a11y/backend/internal/infra/persistence/commonrepo"
)

type ValidationServer struct {
	commonrepo.Mode
	Name            string     `gorm:"column:name;size:100;not null"`
	URL             string     `gorm:"column:url;size:500;not null;uniqueIndex"`
	IsActive        bool       `gorm:"column:is_active;default:true;index:idx_active_healthy"`
	IsHealthy       bool       `gorm:"column:is_healthy;default:true;index:idx_active_healthy"`
	Weight          int        `gorm:"column:weight;default:1"`
	LastHealthCheck *time.Time `gorm:"column:last_health_check"`
	TotalRequests   int64      `gorm:"column:total_requests;default:0"`
	SuccessRate     float64    `gorm:"column:success_rate;default:100"`
	AvgResponseTime float64    `gorm:"column:avg_response_time;default:0"`
	CreatedBy       uint64     `gorm:"column:created_by"`
}

func (ValidationServer) TableName() string {
	return "validation_servers"
}
