package config

import "time"

// HTTP configures the ops server; timeouts cover the whole surface since
// every endpoint is a quick read or an enqueue.
type HTTP struct {
	ListenAddress   string        `env:"HTTP_LISTEN_ADDRESS,notEmpty"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}
