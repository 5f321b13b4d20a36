package service

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"pr_compliance_service/internal/domain"
	"pr_compliance_service/internal/domain/entity"
	"pr_compliance_service/pkg/errcodes"
)

var validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals

// RuleSet is the immutable per-run rule configuration. It is shared
// read-only between evaluation workers.
type RuleSet struct {
	RequiredApprovals  int            `validate:"min=1"`
	PerRepository      map[string]int `validate:"dive,min=1"`
	RequiredCheckNames []string
	BotAccounts        []string
	Window             entity.Window `validate:"-"`
	Workers            int           `validate:"min=1"`
}

// Validate rejects a malformed rule set before any PR is evaluated.
// A bad configuration is a defect, never worked around with defaults.
func (r RuleSet) Validate() error {
	if err := validate.Struct(r); err != nil {
		return domain.WrapError(err, errcodes.InvalidConfiguration, "invalid rule set")
	}
	if err := r.Window.Validate(); err != nil {
		return domain.WrapError(err, errcodes.InvalidConfiguration, "invalid aggregation window")
	}
	return nil
}

// RequiredApprovalsFor returns the per-repository threshold when one is
// configured, the default otherwise.
func (r RuleSet) RequiredApprovalsFor(repository string) int {
	if n, ok := r.PerRepository[repository]; ok {
		return n
	}
	return r.RequiredApprovals
}

func (r RuleSet) requiredCheckSet() map[string]struct{} {
	names := make(map[string]struct{}, len(r.RequiredCheckNames))
	for _, name := range r.RequiredCheckNames {
		names[name] = struct{}{}
	}
	return names
}

func (r RuleSet) String() string {
	return fmt.Sprintf("RuleSet{approvals=%d overrides=%d checks=%v bots=%d window=[%s,%s) workers=%d}",
		r.RequiredApprovals, len(r.PerRepository), r.RequiredCheckNames, len(r.BotAccounts),
		r.Window.From.Format("2006-01-02"), r.Window.To.Format("2006-01-02"), r.Workers)
}
