// SPDX-License-Identifier: MPL-2.0

package urdf_test

import (
	"fmt"
	"testing"

	"github.com/urdfkit/urdfkit/internal/plant"
	"github.com/urdfkit/urdfkit/pkg/urdf"
)

const collisionFilterFile = "testdata/collision_filter_group_parsing_test.urdf"

// sphereIDs returns the id of each linkN_sphere geometry, indexed by N.
func sphereIDs(t *testing.T, p *plant.Plant, model string) map[int]urdf.GeometryID {
	t.Helper()
	ids := make(map[int]urdf.GeometryID)
	for i := 1; i <= 6; i++ {
		name := fmt.Sprintf("%s::link%d_sphere", model, i)
		g, ok := p.GeometryByName(name)
		if !ok {
			t.Fatalf("missing geometry %s", name)
		}
		ids[i] = g.ID
	}
	return ids
}

func checkCollisionFilters(t *testing.T, p *plant.Plant, model string) {
	t.Helper()
	ids := sphereIDs(t, p, model)

	filtered := [][2]int{{1, 3}, {1, 4}, {2, 3}, {2, 5}, {2, 6}, {3, 4}, {3, 5}, {3, 6}, {5, 6}}
	unfiltered := [][2]int{{1, 2}, {1, 5}, {1, 6}, {2, 4}, {4, 5}, {4, 6}}
	for _, pair := range filtered {
		if !p.CollisionFiltered(ids[pair[0]], ids[pair[1]]) {
			t.Errorf("%s: expected link%d and link%d to be filtered", model, pair[0], pair[1])
		}
	}
	for _, pair := range unfiltered {
		if p.CollisionFiltered(ids[pair[0]], ids[pair[1]]) {
			t.Errorf("%s: expected link%d and link%d not to be filtered", model, pair[0], pair[1])
		}
	}
}

func TestCollisionFilterGroupParsing(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	m, err := f.addFile(collisionFilterFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.expectNoDiagnostics()
	checkCollisionFilters(t, f.plant, "collision_filter_group_parsing_test")

	if got := len(m.FilteredLinkPairs); got != 9 {
		t.Errorf("expected 9 filtered link pairs, got %d: %v", got, m.FilteredLinkPairs)
	}
	if !m.IsFiltered("link6", "link5") || m.IsFiltered("link1", "link2") {
		t.Error("IsFiltered disagrees with the group relation")
	}
	// group_link24 is marked ignore="true".
	if len(m.CollisionFilterGroups) != 4 {
		t.Errorf("expected 4 groups, got %d", len(m.CollisionFilterGroups))
	}

	// A second copy gets its own filters and leaves the first one alone.
	if _, err := f.addFile(collisionFilterFile, urdf.WithModelName("model2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.expectNoDiagnostics()
	checkCollisionFilters(t, f.plant, "model2")
	checkCollisionFilters(t, f.plant, "collision_filter_group_parsing_test")

	if got := f.plant.NumFilteredPairs(); got != 18 {
		t.Errorf("expected 18 filtered geometry pairs, got %d", got)
	}
}

func TestCollisionFilterGroup_RepeatedDeclarations(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	// Reciprocal and repeated ignores describe the same relation.
	m := f.mustAdd(`
<robot name='a'>
  <link name='l1'><collision name='c1'><geometry><sphere radius='1'/></geometry></collision></link>
  <link name='l2'><collision name='c2'><geometry><sphere radius='1'/></geometry></collision></link>
  <drake:collision_filter_group name='g1'>
    <drake:member link='l1'/>
    <drake:member link='l1'/>
    <drake:ignored_collision_filter_group name='g2'/>
    <drake:ignored_collision_filter_group name='g2'/>
  </drake:collision_filter_group>
  <drake:collision_filter_group name='g2'>
    <drake:member link='l2'/>
    <drake:ignored_collision_filter_group name='g1'/>
  </drake:collision_filter_group>
</robot>`)
	f.expectNoDiagnostics()
	if len(m.FilteredLinkPairs) != 1 || m.FilteredLinkPairs[0] != (urdf.LinkPair{A: "l1", B: "l2"}) {
		t.Errorf("expected only (l1, l2), got %v", m.FilteredLinkPairs)
	}
	if got := f.plant.NumFilteredPairs(); got != 1 {
		t.Errorf("expected 1 filtered geometry pair, got %d", got)
	}
}

func TestCollisionFilterGroup_ReapplyIsIdempotent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	m, err := f.addFile(collisionFilterFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.expectNoDiagnostics()
	model := "collision_filter_group_parsing_test"
	before := f.plant.NumFilteredPairs()
	if before != 9 {
		t.Fatalf("expected 9 filtered geometry pairs, got %d", before)
	}

	ids := sphereIDs(t, f.plant, model)
	linkGeometry := func(link string) []urdf.GeometryID {
		var n int
		if _, err := fmt.Sscanf(link, "link%d", &n); err != nil {
			t.Fatalf("unexpected link name %q", link)
		}
		return []urdf.GeometryID{ids[n]}
	}
	for range 2 {
		for _, pair := range m.FilteredLinkPairs {
			if err := f.plant.ExcludeCollisionsBetween(linkGeometry(pair.A), linkGeometry(pair.B)); err != nil {
				t.Fatalf("re-excluding %v: %v", pair, err)
			}
			if err := f.plant.ExcludeCollisionsBetween(linkGeometry(pair.B), linkGeometry(pair.A)); err != nil {
				t.Fatalf("re-excluding %v reversed: %v", pair, err)
			}
		}
	}

	if got := f.plant.NumFilteredPairs(); got != before {
		t.Errorf("re-applying the groups changed the filtered pair count from %d to %d", before, got)
	}
	checkCollisionFilters(t, f.plant, model)
}

func TestCollisionFilterGroup_UnknownIgnoredGroup(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	m := f.mustAdd(`
<robot name='a'>
  <link name='l1'><collision><geometry><sphere radius='1'/></geometry></collision></link>
  <drake:collision_filter_group name='g1'>
    <drake:member link='l1'/>
    <drake:ignored_collision_filter_group name='nobody'/>
  </drake:collision_filter_group>
</robot>`)
	f.expectNoDiagnostics()
	if len(m.FilteredLinkPairs) != 0 {
		t.Errorf("expected no filtered pairs, got %v", m.FilteredLinkPairs)
	}
}

func TestCollisionFilterGroup_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		group   string
		pattern string
		pairs   int
	}{
		{
			name: "missing group name",
			group: `<drake:collision_filter_group>
    <drake:member link='l1'/>
  </drake:collision_filter_group>`,
			pattern: `^The tag <drake:collision_filter_group> does not specify the required attribute "name"\.$`,
		},
		{
			name: "missing member link",
			group: `<drake:collision_filter_group name='g'>
    <drake:member/>
    <drake:member link='l1'/>
    <drake:member link='l2'/>
    <drake:ignored_collision_filter_group name='g'/>
  </drake:collision_filter_group>`,
			pattern: `^The tag <drake:member> does not specify the required attribute "link"\.$`,
			pairs:   1,
		},
		{
			name: "unknown member link",
			group: `<drake:collision_filter_group name='g'>
    <drake:member link='l1'/>
    <drake:member link='ghost'/>
    <drake:ignored_collision_filter_group name='g'/>
  </drake:collision_filter_group>`,
			pattern: `^The collision filter group 'g' names link 'ghost' which could not be found with model instance ID 2\.$`,
		},
		{
			name: "missing ignored group name",
			group: `<drake:collision_filter_group name='g'>
    <drake:member link='l1'/>
    <drake:member link='l2'/>
    <drake:ignored_collision_filter_group/>
    <drake:ignored_collision_filter_group name='g'/>
  </drake:collision_filter_group>`,
			pattern: `^The tag <drake:ignored_collision_filter_group> does not specify the required attribute "name"\.$`,
			pairs:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			m := f.mustAdd(`
<robot name='a'>
  <link name='l1'><collision><geometry><sphere radius='1'/></geometry></collision></link>
  <link name='l2'><collision><geometry><sphere radius='1'/></geometry></collision></link>
  ` + tt.group + `
</robot>`)
			f.takeError(tt.pattern)
			f.expectNoDiagnostics()
			if got := len(m.FilteredLinkPairs); got != tt.pairs {
				t.Errorf("expected %d filtered pairs, got %v", tt.pairs, m.FilteredLinkPairs)
			}
		})
	}
}

func TestCollisionFilterGroup_WorldMember(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	m := f.mustAdd(`
<robot name='a'>
  <link name='world'><collision><geometry><box size='1 1 1'/></geometry></collision></link>
  <link name='l1'><collision><geometry><sphere radius='1'/></geometry></collision></link>
  <drake:collision_filter_group name='ground'>
    <drake:member link='world'/>
  </drake:collision_filter_group>
  <drake:collision_filter_group name='robot'>
    <drake:member link='l1'/>
    <drake:ignored_collision_filter_group name='ground'/>
  </drake:collision_filter_group>
</robot>`)
	f.expectNoDiagnostics()
	if !m.IsFiltered("world", "l1") {
		t.Errorf("expected (l1, world) to be filtered, got %v", m.FilteredLinkPairs)
	}
	if got := f.plant.NumFilteredPairs(); got != 1 {
		t.Errorf("expected 1 filtered geometry pair, got %d", got)
	}
}
