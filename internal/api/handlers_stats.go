package api

import (
	"net/http"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/dgallion1/agendagen/internal/doctree"
	"github.com/dgallion1/agendagen/internal/export"
	"github.com/dgallion1/agendagen/internal/schema"
	"github.com/dgallion1/agendagen/internal/seed"
)

type attrInfo struct {
	Name    string   `json:"name"`
	Default string   `json:"default,omitempty"`
	Values  []string `json:"values,omitempty"`
}

type contentInfo struct {
	Shape     string           `json:"shape"`
	Min       int              `json:"min,omitempty"`
	Allowed   []doctree.Kind   `json:"allowed,omitempty"`
	Positions [][]doctree.Kind `json:"positions,omitempty"`
}

type kindInfo struct {
	Kind    doctree.Kind `json:"kind"`
	Group   string       `json:"group"`
	Content contentInfo  `json:"content"`
	Attrs   []attrInfo   `json:"attrs,omitempty"`
}

type markInfo struct {
	Type  doctree.MarkType `json:"type"`
	Rank  int              `json:"rank"`
	Attrs []attrInfo       `json:"attrs,omitempty"`
}

func describeAttrs(specs []schema.AttrSpec) []attrInfo {
	out := make([]attrInfo, 0, len(specs))
	for _, a := range specs {
		out = append(out, attrInfo{Name: a.Name, Default: a.Default, Values: a.Values})
	}
	return out
}

func sorted(s mapset.Set[doctree.Kind]) []doctree.Kind {
	out := s.ToSlice()
	slices.Sort(out)
	return out
}

func (s *Server) handleRegistry(w http.ResponseWriter, r *http.Request) {
	var kinds []kindInfo
	for _, k := range s.reg.Kinds() {
		d, err := s.reg.Lookup(k)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		ci := contentInfo{Shape: d.Content.Shape.String(), Min: d.Content.Min}
		if d.Content.Allowed != nil {
			ci.Allowed = sorted(d.Content.Allowed)
		}
		for _, p := range d.Content.Positions {
			ci.Positions = append(ci.Positions, sorted(p))
		}
		kinds = append(kinds, kindInfo{Kind: k, Group: d.Group.String(), Content: ci, Attrs: describeAttrs(d.Attrs)})
	}

	var marks []markInfo
	for _, t := range s.reg.MarkTypes() {
		m, err := s.reg.LookupMark(t)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		marks = append(marks, markInfo{Type: t, Rank: m.Rank, Attrs: describeAttrs(m.Attrs)})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"kinds":     kinds,
		"marks":     marks,
		"templates": seed.Names(),
		"formats":   export.Formats(),
	})
}

func (s *Server) handleRenderStats(w http.ResponseWriter, r *http.Request) {
	if s.engine == nil {
		jsonError(w, "print engine not configured", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"engine":      s.cfg.PrintEngineURL,
		"stats":       s.engine.Stats().Snapshot(),
		"queue_depth": s.orchestrator.QueueDepth(),
		"jobs":        s.orchestrator.JobCount(),
	})
}
