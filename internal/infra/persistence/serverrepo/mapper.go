package serverrepo

import (
	domain "github.com/emailvalidation9-a11y/backend/internal/biz/server"
	"github.com/emailvalidation9-a11y/backend/internal/infra/persistence/commonrepo"
)

func (po *ValidationServer) FromDomain(in *domain.Server) *ValidationServer {
	return &ValidationServer{
		Mode: commonrepo.Mode{
			ID:        in.ID,
			CreatedAt: in.CreatedAt,
			UpdatedAt: in.UpdatedAt,
		},
		Name:            in.Name,
		URL:             in.URL,
		IsActive:        in.IsActive,
		IsHealthy:       in.IsHealthy,
		Weight:          in.Weight,
		LastHealthCheck: in.LastHealthCheck,
		TotalRequests:   in.TotalRequests,
		SuccessRate:     in.SuccessRate,
		AvgResponseTime: in.AvgResponseTime,
		CreatedBy:       in.CreatedBy,
	}
}

func (po *ValidationServer) ToDomain() *domain.Server {
	return &domain.Server{
		ID:              po.ID,
		CreatedAt:       po.CreatedAt,
		UpdatedAt:       po.UpdatedAt,
		Name:            po.Name,
		URL:             po.URL,
		IsActive:        po.IsActive,
		IsHealthy:       po.IsHealthy,
		Weight:          po.Weight,
		LastHealthCheck: po.LastHealthCheck,
		TotalRequests:   po.TotalRequests,
		SuccessRate:     po.SuccessRate,
		AvgResponseTime: po.AvgResponseTime,
		CreatedBy:       po.CreatedBy,
	}
}

func patchToMap(input *domain.ServerPatch) map[string]any {
	if input == nil {
		return nil
	}
	var values = make(map[string]any)

	if input.Name != nil {
		values["name"] = *input.Name
	}
	if input.URL != nil {
		values["url"] = *input.URL
	}
	if input.IsActive != nil {
		values["is_active"] = *input.IsActive
	}
	if input.IsHealthy != nil {
		values["is_healthy"] = *input.IsHealthy
	}
	if input.Weight != nil {
		values["weight"] = *input.Weight
	}
	if input.LastHealthCheck != nil {
		values["last_health_check"] = *input.LastHealthCheck
	}
	if input.TotalRequests != nil {
		values["total_requests"] = *input.TotalRequests
	}
	if input.SuccessRate != nil {
		values["success_rate"] = *input.SuccessRate
	}
	if input.AvgResponseTime != nil {
		values["avg_response_time"] = *input.AvgResponseTime
	}

	return values
}
