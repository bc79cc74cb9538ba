package registry

import (
	"github.com/orcaclubpro/trenddrop-sub002/internal/components/snapshotcache"
	"github.com/orcaclubpro/trenddrop-sub002/internal/config"
	"github.com/orcaclubpro/trenddrop-sub002/internal/consts"
	"github.com/orcaclubpro/trenddrop-sub002/internal/core"
)

func init() {
	Register(consts.COMPONENT_SNAPSHOT_CACHE, func(cfg *config.AppConfig, rt *Runtime) (bool, core.Component, error) {
		if cfg.SnapshotCache == nil || !cfg.SnapshotCache.Enabled {
			return false, nil, nil
		}
		return true, snapshotcache.NewComponent(cfg.SnapshotCache, rt.Bus), nil
	})
}
