package registry

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/orcaclubpro/trenddrop-sub002/internal/components/http_server"
	"github.com/orcaclubpro/trenddrop-sub002/internal/components/realtime"
	"github.com/orcaclubpro/trenddrop-sub002/internal/config"
	"github.com/orcaclubpro/trenddrop-sub002/internal/consts"
	"github.com/orcaclubpro/trenddrop-sub002/internal/core"
)

func init() {
	Register(consts.COMPONENT_HTTP_SERVER, func(cfg *config.AppConfig, rt *Runtime) (bool, core.Component, error) {
		if cfg.HTTPServer == nil || !cfg.HTTPServer.Enabled {
			return false, nil, nil
		}
		if cfg.APPInfo != nil {
			cfg.HTTPServer.ServiceName = cfg.APPInfo.APPName
		}
		comp := http_server.NewHTTPServerComponent(cfg.HTTPServer, rt.Container)
		if err := comp.AddRouteRegistrar(mountWebsocket); err != nil {
			return true, nil, err
		}
		return true, comp, nil
	})
}

// mountWebsocket resolves the realtime transport at server start, once the
// container is fully populated.
func mountWebsocket(r chi.Router, c *core.Container) error {
	raw, err := c.Resolve(consts.COMPONENT_REALTIME)
	if err != nil {
		return fmt.Errorf("ws route requires realtime: %w", err)
	}
	transport, ok := raw.(*realtime.Component)
	if !ok {
		return fmt.Errorf("component %s is not a realtime transport", consts.COMPONENT_REALTIME)
	}
	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		transport.ServeWS(w, req)
	})
	return nil
}
