package validator

import (
	"github.com/go-playground/validator/v10"

	"memberhub_backend/internal/logger"
	"memberhub_backend/internal/models"
	"memberhub_backend/internal/roles"
)

// registerCustomRules installs the domain tags. Empty values pass; use
// "required" to reject them.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			logger.Fatal("failed to register custom validation tag", "tag", tag, "error", err)
		}
	}

	// role_tag also works on []string fields with "dive".
	mustRegister("role_tag", stringRule(func(s string) bool {
		_, err := roles.Parse(s)
		return err == nil
	}))
	mustRegister("opportunity_type", stringRule(func(s string) bool {
		return models.OpportunityType(s).Valid()
	}))
	mustRegister("opportunity_status", stringRule(func(s string) bool {
		return models.OpportunityStatus(s).Valid()
	}))
	mustRegister("app_status", stringRule(func(s string) bool {
		return models.ApplicationStatus(s).Valid()
	}))
	mustRegister("approval_status", stringRule(func(s string) bool {
		return models.ApprovalStatus(s).Valid()
	}))
}

func stringRule(ok func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		return ok(value)
	}
}
