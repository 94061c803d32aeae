package jobrepo

import (
	domain "github.com/emailvalidation9-a11y/backend/internal/biz/job"
	"github.com/emailvalidation9-a11y/backend/internal/infra/persistence/commonrepo"
	"gorm.io/datatypes"
)

func (po *ValidationJob) FromDomain(in *domain.Job) *ValidationJob {
	out := &ValidationJob{
		Mode: commonrepo.Mode{
			ID:        in.ID,
			CreatedAt: in.CreatedAt,
			UpdatedAt: in.UpdatedAt,
		},
		OwnerID:            in.OwnerID,
		Type:               in.Type,
		Source:             in.Source,
		EngineJobID:        in.EngineJobID,
		Status:             in.Status,
		ServerUsed:         in.ServerUsed,
		TotalEmails:        in.TotalEmails,
		ProcessedEmails:    in.ProcessedEmails,
		ProgressPercentage: in.ProgressPercentage,
		ValidCount:         in.ValidCount,
		InvalidCount:       in.InvalidCount,
		CatchAllCount:      in.CatchAllCount,
		DisposableCount:    in.DisposableCount,
		RoleBasedCount:     in.RoleBasedCount,
		UnknownCount:       in.UnknownCount,
		CreditsUsed:        in.CreditsUsed,
		WebhookURL:         in.WebhookURL,
		WebhookSent:        in.WebhookSent,
		ErrorMessage:       in.ErrorMessage,
		CompletedAt:        in.CompletedAt,
	}
	if in.FileInfo != nil {
		v := datatypes.NewJSONType(*in.FileInfo)
		out.FileInfo = &v
	}
	if in.ResultFile != nil {
		v := datatypes.NewJSONType(*in.ResultFile)
		out.ResultFile = &v
	}
	return out
}

func (po *ValidationJob) ToDomain() *domain.Job {
	out := &domain.Job{
		ID:                 po.ID,
		CreatedAt:          po.CreatedAt,
		UpdatedAt:          po.UpdatedAt,
		OwnerID:            po.OwnerID,
		Type:               po.Type,
		Source:             po.Source,
		EngineJobID:        po.EngineJobID,
		Status:             po.Status,
		ServerUsed:         po.ServerUsed,
		TotalEmails:        po.TotalEmails,
		ProcessedEmails:    po.ProcessedEmails,
		ProgressPercentage: po.ProgressPercentage,
		ValidCount:         po.ValidCount,
		InvalidCount:       po.InvalidCount,
		CatchAllCount:      po.CatchAllCount,
		DisposableCount:    po.DisposableCount,
		RoleBasedCount:     po.RoleBasedCount,
		UnknownCount:       po.UnknownCount,
		CreditsUsed:        po.CreditsUsed,
		WebhookURL:         po.WebhookURL,
		WebhookSent:        po.WebhookSent,
		ErrorMessage:       po.ErrorMessage,
		CompletedAt:        po.CompletedAt,
	}
	if po.FileInfo != nil {
		v := po.FileInfo.Data()
		out.FileInfo = &v
	}
	if po.ResultFile != nil {
		v := po.ResultFile.Data()
		out.ResultFile = &v
	}
	return out
}

func patchToMap(input *domain.JobPatch) map[string]any {
	if input == nil {
		return nil
	}
	var values = make(map[string]any)

	if input.Status != nil {
		values["status"] = *input.Status
	}
	if input.EngineJobID != nil {
		values["engine_job_id"] = *input.EngineJobID
	}
	if input.ServerUsed != nil {
		values["server_used"] = *input.ServerUsed
	}
	if input.TotalEmails != nil {
		values["total_emails"] = *input.TotalEmails
	}
	if input.ProcessedEmails != nil {
		values["processed_emails"] = *input.ProcessedEmails
	}
	if input.ProgressPercentage != nil {
		values["progress_percentage"] = *input.ProgressPercentage
	}
	if input.CreditsUsed != nil {
		values["credits_used"] = *input.CreditsUsed
	}
	if input.WebhookSent != nil {
		values["webhook_sent"] = *input.WebhookSent
	}
	if input.ErrorMessage != nil {
		values["error_message"] = *input.ErrorMessage
	}
	if input.ResultFile != nil {
		values["result_file"] = datatypes.NewJSONType(*input.ResultFile)
	}
	if input.CompletedAt != nil {
		values["completed_at"] = *input.CompletedAt
	}

	return values
}
