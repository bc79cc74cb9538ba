package registry

import (
	"github.com/orcaclubpro/trenddrop-sub002/internal/components/realtime"
	"github.com/orcaclubpro/trenddrop-sub002/internal/config"
	"github.com/orcaclubpro/trenddrop-sub002/internal/consts"
	"github.com/orcaclubpro/trenddrop-sub002/internal/core"
)

func init() {
	Register(consts.COMPONENT_REALTIME, func(cfg *config.AppConfig, rt *Runtime) (bool, core.Component, error) {
		rc := cfg.Realtime
		if rc == nil {
			rc = &realtime.Config{}
		}
		return true, realtime.NewComponent(rc, rt.Bus), nil
	})
}
