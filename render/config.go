// Package render provides Railway's default Canvas adapter and the demo
// CLI's configuration; clip/stroke rendering step execution lives in
// package railway.
package render

import "github.com/caarlos0/env/v6"

// Config holds the small set of knobs the demo CLI (cmd/railway) exposes
// through environment variables, following a flag-plus-env-var shape
// rather than a config file format.
type Config struct {
	CanvasWidth  int     `env:"RAILWAY_CANVAS_WIDTH" envDefault:"256"`
	CanvasHeight int     `env:"RAILWAY_CANVAS_HEIGHT" envDefault:"256"`
	Tolerance    float32 `env:"RAILWAY_TOLERANCE" envDefault:"0.5"`
}

// LoadConfig parses Config from the process environment, falling back to
// the struct tag defaults for anything unset.
func LoadConfig() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
