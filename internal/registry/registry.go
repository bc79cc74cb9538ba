package registry

import (
	"fmt"
	"sort"

	"github.com/orcaclubpro/trenddrop-sub002/internal/config"
	"github.com/orcaclubpro/trenddrop-sub002/internal/core"
	"github.com/orcaclubpro/trenddrop-sub002/internal/eventbus"
)

// Runtime carries the shared infrastructure builders wire components to.
type Runtime struct {
	Container *core.Container
	Bus       *eventbus.Bus
	Services  *ServiceRegistry
}

// BuilderFunc returns (enabled, component, error). enabled=false skips registration.
type BuilderFunc func(cfg *config.AppConfig, rt *Runtime) (bool, core.Component, error)

// Builder holds a named build function plus the builder names that must run
// before it (build-time ordering, distinct from runtime Dependencies()).
type Builder struct {
	Name string
	Fn   BuilderFunc
	Deps []string
}

var builders []*Builder

func findBuilder(name string) *Builder {
	for _, b := range builders {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// Register registers a component builder with an explicit name.
func Register(name string, fn BuilderFunc, deps ...string) {
	if name == "" {
		panic("registry: empty name in Register")
	}
	if findBuilder(name) != nil {
		panic("registry: duplicate builder name " + name)
	}
	builders = append(builders, &Builder{Name: name, Fn: fn, Deps: deps})
}

// BuildAndRegisterAll topologically sorts builders by build-time deps, then
// builds and registers each enabled component into the container.
func BuildAndRegisterAll(cfg *config.AppConfig, rt *Runtime) error {
	ordered, err := topoSortBuilders(builders)
	if err != nil {
		return err
	}
	for _, b := range ordered {
		enabled, comp, err := b.Fn(cfg, rt)
		if err != nil {
			return fmt.Errorf("build %s failed: %w", b.Name, err)
		}
		if !enabled || comp == nil {
			continue
		}
		if err := rt.Container.Register(b.Name, comp); err != nil {
			return fmt.Errorf("register %s failed: %w", b.Name, err)
		}
	}
	return nil
}

// topoSortBuilders orders builders so every builder runs after its deps.
// Deps naming a builder that was never registered are ignored.
func topoSortBuilders(list []*Builder) ([]*Builder, error) {
	nameMap := map[string]*Builder{}
	inDeg := map[string]int{}
	adj := map[string][]string{}
	for _, b := range list {
		nameMap[b.Name] = b
		inDeg[b.Name] = 0
	}
	for _, b := range list {
		for _, d := range b.Deps {
			if _, ok := nameMap[d]; !ok {
				continue
			}
			adj[d] = append(adj[d], b.Name)
			inDeg[b.Name]++
		}
	}
	var zero []string
	for n, d := range inDeg {
		if d == 0 {
			zero = append(zero, n)
		}
	}
	sort.Strings(zero)
	var ordered []*Builder
	for len(zero) > 0 {
		n := zero[0]
		zero = zero[1:]
		ordered = append(ordered, nameMap[n])
		for _, nxt := range adj[n] {
			inDeg[nxt]--
			if inDeg[nxt] == 0 {
				zero = append(zero, nxt)
			}
		}
		sort.Strings(zero)
	}
	if len(ordered) != len(nameMap) {
		var cyc []string
		for n, d := range inDeg {
			if d > 0 {
				cyc = append(cyc, n)
			}
		}
		sort.Strings(cyc)
		return nil, fmt.Errorf("registry: cyclic builder deps: %v", cyc)
	}
	return ordered, nil
}
