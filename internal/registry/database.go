package registry

import (
	"github.com/orcaclubpro/trenddrop-sub002/internal/components/database"
	"github.com/orcaclubpro/trenddrop-sub002/internal/config"
	"github.com/orcaclubpro/trenddrop-sub002/internal/consts"
	"github.com/orcaclubpro/trenddrop-sub002/internal/core"
)

func init() {
	Register(consts.COMPONENT_DATABASE, func(cfg *config.AppConfig, rt *Runtime) (bool, core.Component, error) {
		if cfg.Database == nil {
			return false, nil, nil
		}
		return true, database.NewComponent(cfg.Database, rt.Bus), nil
	})
}
