package gfa

import (
	"strings"

	"github.com/segtools/gosegment/pkg/graph"
)

// A FilterConfig selects which segments survive filtering, by exact name or
// by name prefix.
type FilterConfig struct {
	Include       []string
	IncludePrefix []string
	Exclude       []string
	ExcludePrefix []string
}

// ExcludedSegments returns the set of segment names removed by a filter
// configuration. If any include rule is given, segments are excluded by
// default and retained only when an include rule matches. Exclude rules are
// applied last and always win over include rules.
func ExcludedSegments(names []string, cfg FilterConfig) map[string]bool {
	include := make(map[string]bool, len(cfg.Include))
	for _, name := range cfg.Include {
		include[name] = true
	}
	exclude := make(map[string]bool, len(cfg.Exclude))
	for _, name := range cfg.Exclude {
		exclude[name] = true
	}

	excluded := make(map[string]bool)
	for _, name := range names {
		drop := false
		if len(include) > 0 || len(cfg.IncludePrefix) > 0 {
			drop = true
			if include[name] {
				drop = false
			}
			for _, prefix := range cfg.IncludePrefix {
				if strings.HasPrefix(name, prefix) {
					drop = false
				}
			}
		}
		if exclude[name] {
			drop = true
		}
		for _, prefix := range cfg.ExcludePrefix {
			if strings.HasPrefix(name, prefix) {
				drop = true
			}
		}
		if drop {
			excluded[name] = true
		}
	}
	return excluded
}

// Filter returns a new Gfa with the excluded segments removed, along with
// every link touching one of them.
func (g *Gfa) Filter(cfg FilterConfig) *Gfa {
	excluded := ExcludedSegments(g.Names(), cfg)
	ng := &Gfa{}
	for _, s := range g.Segments {
		if !excluded[s.Name] {
			ng.Segments = append(ng.Segments, s)
		}
	}
	for _, l := range g.Links {
		if !excluded[l.FromName] && !excluded[l.ToName] {
			ng.Links = append(ng.Links, l)
		}
	}
	return ng
}

// FilterNodes drops both orientations of every excluded segment from a node
// list, preserving order.
func FilterNodes(nodes []graph.Node, excluded map[string]bool) []graph.Node {
	kept := make([]graph.Node, 0, len(nodes))
	for _, n := range nodes {
		if !excluded[n.Base()] {
			kept = append(kept, n)
		}
	}
	return kept
}
