// SPDX-License-Identifier: MPL-2.0

package urdf_test

import (
	"strings"
	"testing"

	"github.com/urdfkit/urdfkit/pkg/urdf"

	"gonum.org/v1/gonum/spatial/r3"
)

const bushingDoc = `
<robot name='bushing_test'>
  <link name='A'/>
  <link name='C'/>
  <frame name='frameA' link='A' xyz='0 0 1'/>
  <frame name='frameC' link='C' rpy='0 0 1'/>
  <drake:linear_bushing_rpy>
    <drake:bushing_frameA name='frameA'/>
    <drake:bushing_frameC name='frameC'/>
    <drake:bushing_torque_stiffness value='1 2 3'/>
    <drake:bushing_torque_damping value='4 5 6'/>
    <drake:bushing_force_stiffness value='7 8 9'/>
    <drake:bushing_force_damping value='10 11 12'/>
  </drake:linear_bushing_rpy>
</robot>`

func TestParseBushing(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	// The same document can be added twice under different model names.
	for _, name := range []string{"b1", "b2"} {
		m := f.mustAdd(bushingDoc, urdf.WithModelName(name))
		if len(m.Bushings) != 1 {
			t.Fatalf("%s: expected 1 bushing, got %d", name, len(m.Bushings))
		}
	}
	f.expectNoDiagnostics()

	bushings := f.plant.Bushings()
	if len(bushings) != 2 {
		t.Fatalf("expected 2 bushings in the plant, got %d", len(bushings))
	}
	b := bushings[0]
	if b.FrameA != "frameA" || b.FrameC != "frameC" {
		t.Errorf("unexpected frames %s, %s", b.FrameA, b.FrameC)
	}
	want := []r3.Vec{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}, {X: 7, Y: 8, Z: 9}, {X: 10, Y: 11, Z: 12}}
	got := []r3.Vec{b.TorqueStiffness, b.TorqueDamping, b.ForceStiffness, b.ForceDamping}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("constant %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestParseBushing_LinkBodyFrames(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	doc := strings.NewReplacer("name='frameA'/>", "name='A'/>", "name='frameC'/>", "name='world'/>").Replace(bushingDoc)
	m := f.mustAdd(doc)
	f.expectNoDiagnostics()
	if len(m.Bushings) != 1 || m.Bushings[0].FrameA != "A" || m.Bushings[0].FrameC != "world" {
		t.Errorf("expected a bushing between A and world, got %+v", m.Bushings)
	}
}

func TestParseBushing_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		old     string
		new     string
		pattern string
	}{
		{
			name:    "missing frameC",
			old:     "<drake:bushing_frameC name='frameC'/>",
			new:     "",
			pattern: `^Unable to find the <drake:bushing_frameC> tag$`,
		},
		{
			name:    "frame name broken",
			old:     "<drake:bushing_frameC name='frameC'/>",
			new:     "<drake:bushing_frameC nameQ='frameC'/>",
			pattern: `^Unable to read the 'name' attribute for the <drake:bushing_frameC> tag$`,
		},
		{
			name:    "frame does not exist",
			old:     "<drake:bushing_frameC name='frameC'/>",
			new:     "<drake:bushing_frameC name='frameZ'/>",
			pattern: `^Frame: frameZ specified for <drake:bushing_frameC> does not exist in the model\.`,
		},
		{
			name:    "missing force damping",
			old:     "<drake:bushing_force_damping value='10 11 12'/>",
			new:     "",
			pattern: `^Unable to find the <drake:bushing_force_damping> tag$`,
		},
		{
			name:    "missing value",
			old:     "<drake:bushing_torque_damping value='4 5 6'/>",
			new:     "<drake:bushing_torque_damping/>",
			pattern: `^Unable to read the 'value' attribute for the <drake:bushing_torque_damping> tag$`,
		},
		{
			name:    "short value",
			old:     "<drake:bushing_force_stiffness value='7 8 9'/>",
			new:     "<drake:bushing_force_stiffness value='7 8'/>",
			pattern: `^Unable to read the 'value' attribute for the <drake:bushing_force_stiffness> tag: expected 3 values`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			m := f.mustAdd(strings.Replace(bushingDoc, tt.old, tt.new, 1))
			f.takeError(tt.pattern)
			f.expectNoDiagnostics()
			if len(m.Bushings) != 0 || len(f.plant.Bushings()) != 0 {
				t.Error("expected no bushing")
			}
		})
	}
}

func TestParseBushing_FrameScopeInMessage(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.mustAdd(strings.Replace(bushingDoc, "name='frameA'/>", "name='nowhere'/>", 1))
	d := f.takeError(`does not exist in the model`)
	if !strings.Contains(d.Message, "model instance ID 2") {
		t.Errorf("expected the scope id in %q", d.Message)
	}
}
