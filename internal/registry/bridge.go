package registry

import (
	"fmt"

	"github.com/orcaclubpro/trenddrop-sub002/internal/components/bridge"
	"github.com/orcaclubpro/trenddrop-sub002/internal/components/realtime"
	"github.com/orcaclubpro/trenddrop-sub002/internal/config"
	"github.com/orcaclubpro/trenddrop-sub002/internal/consts"
	"github.com/orcaclubpro/trenddrop-sub002/internal/core"
)

func init() {
	// Builds after realtime so the transport is already registered.
	Register(consts.COMPONENT_BRIDGE, func(cfg *config.AppConfig, rt *Runtime) (bool, core.Component, error) {
		raw, err := rt.Container.Resolve(consts.COMPONENT_REALTIME)
		if err != nil {
			return true, nil, fmt.Errorf("bridge requires realtime: %w", err)
		}
		transport, ok := raw.(*realtime.Component)
		if !ok {
			return true, nil, fmt.Errorf("component %s is not a realtime transport", consts.COMPONENT_REALTIME)
		}
		return true, bridge.NewComponent(cfg.Bridge, rt.Bus, transport), nil
	}, consts.COMPONENT_REALTIME)
}
