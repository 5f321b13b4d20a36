package config

import (
	"time"

	"pr_compliance_service/internal/domain/entity"
	"pr_compliance_service/internal/domain/service"
)

// Rules is the externally supplied compliance rule configuration. Env
// parsing only gets it into memory; domain validation happens in
// service.RuleSet.Validate at the evaluator boundary.
type Rules struct {
	RequiredApprovals int `env:"RULES_REQUIRED_APPROVALS" envDefault:"1"`
	// PerRepository overrides the default threshold, e.g. "core:2,infra:3".
	PerRepository      map[string]int `env:"RULES_REPO_APPROVALS" envSeparator:"," envKeyValSeparator:":"`
	RequiredCheckNames []string       `env:"RULES_REQUIRED_CHECKS" envSeparator:","`
	BotAccounts        []string       `env:"RULES_BOT_ACCOUNTS" envSeparator:","`
	WindowDays         int            `env:"RULES_WINDOW_DAYS" envDefault:"30"`
	Workers            int            `env:"RULES_EVAL_WORKERS" envDefault:"4"`
}

// RuleSet materializes the per-run rule set; the aggregation window is
// the trailing WindowDays ending at now.
func (r Rules) RuleSet(now time.Time) service.RuleSet {
	now = now.UTC()

	return service.RuleSet{
		RequiredApprovals:  r.RequiredApprovals,
		PerRepository:      r.PerRepository,
		RequiredCheckNames: r.RequiredCheckNames,
		BotAccounts:        r.BotAccounts,
		Window: entity.Window{
			From: now.AddDate(0, 0, -r.WindowDays),
			To:   now,
		},
		Workers: r.Workers,
	}
}
