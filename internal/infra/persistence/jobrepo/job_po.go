package jobrepo

import (
	"time"

	domain "github.com/emailvalidation9-a11y/backend/internal/biz/job"
	"github.com/emailvalidation9-a11y/backend/internal/infra/persistence/commonrepo"
	"gorm.io/datatypes"
)

type ValidationJob struct {
	commonrepo.Mode
	OwnerID            uint64                                 `gorm:"column:owner_id;not null;index:idx_owner_status"`
	Type               domain.JobType                         `gorm:"column:type;size:20;not null"`
	Source             string                                 `gorm:"column:source;size:20"`
	EngineJobID        string                                 `gorm:"column:engine_job_id;size:255"`
	Status             domain.JobStatus                       `gorm:"column:status;size:20;not null;index:idx_owner_status"`
	ServerUsed         string                                 `gorm:"column:server_used;size:500"`
	TotalEmails        int                                    `gorm:"column:total_emails;default:0"`
	ProcessedEmails    int                                    `gorm:"column:processed_emails;default:0"`
	ProgressPercentage int                                    `gorm:"column:progress_percentage;default:0"`
	ValidCount         int                                    `gorm:"column:valid_count;default:0"`
	InvalidCount       int                                    `gorm:"column:invalid_count;default:0"`
	CatchAllCount      int                                    `gorm:"column:catch_all_count;default:0"`
	DisposableCount    int                                    `gorm:"column:disposable_count;default:0"`
	RoleBasedCount     int                                    `gorm:"column:role_based_count;default:0"`
	UnknownCount       int                                    `gorm:"column:unknown_count;default:0"`
	CreditsUsed        int64                                  `gorm:"column:credits_used;default:0"`
	WebhookURL         string                                 `gorm:"column:webhook_url;size:500"`
	WebhookSent        bool                                   `gorm:"column:webhook_sent;default:false"`
	ErrorMessage       string                                 `gorm:"column:error_message;size:1000"`
	FileInfo           *datatypes.JSONType[domain.FileInfo]   `gorm:"column:file_info;type:json"`
	ResultFile         *datatypes.JSONType[domain.ResultFile] `gorm:"column:result_file;type:json"`
	CompletedAt        *time.Time                             `gorm:"column:completed_at"`
}

func (ValidationJob) TableName() string {
	return "validation_jobs"
}
