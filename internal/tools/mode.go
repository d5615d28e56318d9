package tools

import (
	"github.com/lvs170603/Quantum-Observer/internal/config"
	"github.com/lvs170603/Quantum-Observer/internal/service"
)

// resolveMode picks the data mode. Priority: explicit input > config > demo.
func resolveMode(demo *bool, cfg *config.Config) service.Mode {
	if demo != nil {
		return service.ModeFor(*demo)
	}
	if cfg == nil {
		return service.ModeDemo
	}
	return service.ModeFor(cfg.DemoMode)
}
