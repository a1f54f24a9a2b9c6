// SPDX-License-Identifier: MPL-2.0

package graph

import (
	"slices"
	"testing"
)

func TestUndirected_Edges(t *testing.T) {
	t.Parallel()
	g := NewUndirected()
	g.AddNode("g14")
	g.AddNode("g3")
	g.AddEdge("g14", "g14")
	g.AddEdge("g3", "g14")
	g.AddEdge("g14", "g3") // same edge
	g.AddEdge("g2", "g3")

	want := []Edge{{"g14", "g14"}, {"g14", "g3"}, {"g3", "g2"}}
	if got := g.Edges(); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if !slices.Equal(g.Nodes(), []string{"g14", "g3", "g2"}) {
		t.Errorf("unexpected nodes %v", g.Nodes())
	}
}

func TestUndirected_Connected(t *testing.T) {
	t.Parallel()
	g := NewUndirected()
	g.AddEdge("a", "b")
	g.AddEdge("c", "c")
	g.AddNode("d")

	tests := []struct {
		a, b string
		want bool
	}{
		{"a", "b", true},
		{"b", "a", true},
		{"c", "c", true},
		{"a", "a", false},
		{"a", "c", false},
		{"d", "d", false},
		{"a", "missing", false},
	}
	for _, tt := range tests {
		if got := g.Connected(tt.a, tt.b); got != tt.want {
			t.Errorf("Connected(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
	if !g.HasNode("d") || g.HasNode("e") {
		t.Error("unexpected HasNode result")
	}
}

func TestUndirected_Empty(t *testing.T) {
	t.Parallel()
	g := NewUndirected()
	if len(g.Edges()) != 0 || len(g.Nodes()) != 0 {
		t.Error("a new graph should be empty")
	}
}
