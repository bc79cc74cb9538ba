package registry

import (
	"github.com/orcaclubpro/trenddrop-sub002/internal/components/logging"
	"github.com/orcaclubpro/trenddrop-sub002/internal/config"
	"github.com/orcaclubpro/trenddrop-sub002/internal/consts"
	"github.com/orcaclubpro/trenddrop-sub002/internal/core"
)

func init() {
	Register(consts.COMPONENT_LOGGING, func(cfg *config.AppConfig, rt *Runtime) (bool, core.Component, error) {
		lc := cfg.Logging
		if lc == nil {
			lc = &logging.LoggingConfig{}
		}
		return true, logging.NewZapLoggerComponent(lc), nil
	})
}
