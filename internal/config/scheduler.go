package config

type Scheduler struct {
	// Interval is an asynq scheduler spec, cron or @every form.
	Interval    string `env:"AUDIT_INTERVAL" envDefault:"@every 1h"`
	Concurrency int    `env:"AUDIT_CONCURRENCY" envDefault:"2"`
}
