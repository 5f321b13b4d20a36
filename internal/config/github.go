package config

import "time"

type GitHub struct {
	BaseURL      string        `env:"GITHUB_BASE_URL" envDefault:"https://api.github.com"`
	Token        string        `env:"GITHUB_TOKEN,notEmpty"`
	Owner        string        `env:"GITHUB_OWNER,notEmpty"`
	Repositories []string      `env:"GITHUB_REPOSITORIES,notEmpty" envSeparator:","`
	PageSize     int           `env:"GITHUB_PAGE_SIZE" envDefault:"100"`
	Timeout      time.Duration `env:"GITHUB_TIMEOUT" envDefault:"30s"`
}
