// SPDX-License-Identifier: MPL-2.0

package urdf

import (
	"strings"

	"github.com/urdfkit/urdfkit/internal/graph"
	"github.com/urdfkit/urdfkit/internal/xmltree"

	"golang.org/x/exp/slices"
)

func (p *parser) parseCollisionFilterGroup(el *xmltree.Element) {
	name, ok := el.Attr("name")
	if !ok || name == "" {
		p.errorf(el, "The tag <drake:collision_filter_group> does not specify the required attribute \"name\".")
		return
	}
	if isTrue(el, "ignore") {
		p.logger.Debug("skipping ignored collision filter group", "group", name)
		return
	}

	group := &CollisionFilterGroup{Name: name, Location: el.Location()}
	for _, member := range el.ChildrenNamed("drake:member") {
		link, ok := member.Attr("link")
		if !ok || link == "" {
			p.errorf(member, "The tag <drake:member> does not specify the required attribute \"link\".")
			continue
		}
		if _, err := p.res.Resolve(KindLink, link); err != nil {
			p.errorf(member, "The collision filter group '%s' names link '%s' which could not be found "+
				"with model instance ID %s.", name, link, formatScope(p.instance()))
			continue
		}
		if !slices.Contains(group.Members, link) {
			group.Members = append(group.Members, link)
		}
	}
	for _, ignored := range el.ChildrenNamed("drake:ignored_collision_filter_group") {
		other, ok := ignored.Attr("name")
		if !ok || other == "" {
			p.errorf(ignored, "The tag <drake:ignored_collision_filter_group> does not specify the required attribute \"name\".")
			continue
		}
		group.Ignores = append(group.Ignores, other)
	}

	if err := p.res.Declare(KindCollisionFilterGroup, name, group); err != nil {
		p.errorf(el, "%v", err)
		return
	}
	p.model.CollisionFilterGroups = append(p.model.CollisionFilterGroups, group)
}

// applyCollisionFilterGroups excludes collisions between the members of every pair of
// groups related by an ignore entry. The relation is symmetric but not transitive.
func (p *parser) applyCollisionFilterGroups() {
	groups := p.model.CollisionFilterGroups
	if len(groups) == 0 {
		return
	}

	rel := graph.NewUndirected()
	byName := make(map[string]*CollisionFilterGroup, len(groups))
	for _, g := range groups {
		rel.AddNode(g.Name)
		byName[g.Name] = g
	}
	for _, g := range groups {
		for _, other := range g.Ignores {
			if !rel.HasNode(other) {
				p.logger.Debug("ignored collision filter group does not exist", "group", g.Name, "ignored", other)
				continue
			}
			rel.AddEdge(g.Name, other)
		}
	}

	seen := make(map[LinkPair]bool)
	var pairs []LinkPair
	source := make(map[LinkPair]*CollisionFilterGroup)
	for _, e := range rel.Edges() {
		ga, gb := byName[e.A], byName[e.B]
		for _, a := range ga.Members {
			for _, b := range gb.Members {
				if a == b {
					continue
				}
				pair := newLinkPair(a, b)
				if seen[pair] {
					continue
				}
				seen[pair] = true
				pairs = append(pairs, pair)
				source[pair] = ga
			}
		}
	}
	slices.SortFunc(pairs, func(x, y LinkPair) int {
		if c := strings.Compare(x.A, y.A); c != 0 {
			return c
		}
		return strings.Compare(x.B, y.B)
	})

	for _, pair := range pairs {
		if p.ws.Geometry != nil {
			la, lb := p.linkByName(pair.A), p.linkByName(pair.B)
			idsA, idsB := la.ProximityIDs(), lb.ProximityIDs()
			if len(idsA) > 0 && len(idsB) > 0 {
				if err := p.ws.Geometry.ExcludeCollisionsBetween(idsA, idsB); err != nil {
					loc := source[pair].Location
					p.buf.add(p.doc.Count(), Diagnostic{Severity: SeverityError, Location: loc, Message: err.Error()})
					continue
				}
			}
		}
		p.model.FilteredLinkPairs = append(p.model.FilteredLinkPairs, pair)
	}
}

// linkByName finds a declared link. Members were resolved at parse time, so the link
// exists unless it is the undeclared world link.
func (p *parser) linkByName(name string) *Link {
	if l := p.model.Link(name); l != nil {
		return l
	}
	return &Link{Name: name, Instance: WorldModelInstance}
}
