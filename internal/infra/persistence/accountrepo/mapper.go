package accountrepo

import (
	domain "github.com/emailvalidation9-a11y/backend/internal/biz/account"
	"github.com/emailvalidation9-a11y/backend/internal/infra/persistence/commonrepo"
)

func (po *Account) FromDomain(in *domain.Account) *Account {
	return &Account{
		Mode: commonrepo.Mode{
			ID:        in.ID,
			CreatedAt: in.CreatedAt,
			UpdatedAt: in.UpdatedAt,
		},
		Name:             in.Name,
		Email:            in.Email,
		Credits:          in.Credits,
		TotalValidations: in.TotalValidations,
		PlanName:         in.PlanName,
		PlanCreditsLimit: in.PlanCreditsLimit,
	}
}

func (po *Account) ToDomain() *domain.Account {
	return &domain.Account{
		ID:               po.ID,
		CreatedAt:        po.CreatedAt,
		UpdatedAt:        po.UpdatedAt,
		Name:             po.Name,
		Email:            po.Email,
		Credits:          po.Credits,
		TotalValidations: po.TotalValidations,
		PlanName:         po.PlanName,
		PlanCreditsLimit: po.PlanCreditsLimit,
	}
}

func patchToMap(input *domain.AccountPatch) map[string]any {
	if input == nil {
		return nil
	}
	var values = make(map[string]any)

	if input.Credits != nil {
		values["credits"] = *input.Credits
	}
	if input.TotalValidations != nil {
		values["total_validations"] = *input.TotalValidations
	}

	return values
}
