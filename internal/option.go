package internal

import (
	"io"

	"github.com/starford/devarchitect/internal/generator"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	logOutput io.Writer
	generator generator.Service
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogOutput redirects the JSON log stream. The MCP stdio server and the
// CLI commands send logs to stderr so stdout stays clean.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}

// WithGenerator replaces the generation service chosen from the config.
func WithGenerator(gen generator.Service) Option {
	return func(a *application) {
		a.generator = gen
	}
}
