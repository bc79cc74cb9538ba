package registry

import (
	"testing"
)

func TestTopoSortBuilders(t *testing.T) {
	list := []*Builder{
		{Name: "bridge", Deps: []string{"realtime"}},
		{Name: "realtime", Deps: []string{"database"}},
		{Name: "database"},
	}
	ordered, err := topoSortBuilders(list)
	if err != nil {
		t.Fatalf("sort: %v", err)
	}
	pos := map[string]int{}
	for i, b := range ordered {
		pos[b.Name] = i
	}
	if pos["database"] > pos["realtime"] || pos["realtime"] > pos["bridge"] {
		t.Fatalf("unexpected order: %v", pos)
	}
}

func TestTopoSortIgnoresUnknownDeps(t *testing.T) {
	list := []*Builder{{Name: "a", Deps: []string{"never_registered"}}}
	ordered, err := topoSortBuilders(list)
	if err != nil || len(ordered) != 1 {
		t.Fatalf("unknown dep should be ignored: %v %v", ordered, err)
	}
}

func TestTopoSortDetectsCycle(t *testing.T) {
	list := []*Builder{
		{Name: "a", Deps: []string{"b"}},
		{Name: "b", Deps: []string{"a"}},
	}
	if _, err := topoSortBuilders(list); err == nil {
		t.Fatalf("expected cycle error")
	}
}
