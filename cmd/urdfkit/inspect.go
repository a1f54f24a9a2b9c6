// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/urdfkit/urdfkit/internal/issue"
	"github.com/urdfkit/urdfkit/pkg/urdf"

	"github.com/spf13/cobra"
)

func newInspectCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.urdf>",
		Short: "Show the links, joints and actuators of a URDF file",
		Long: `Load a URDF file and print what the model builder received: links with their
mass and geometry, joints with their limits, frames, actuators, bushings and
collision filtering. Diagnostics are written to stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, app, args[0])
		},
	}
}

func runInspect(cmd *cobra.Command, app *App, file string) error {
	pkgs, err := app.packageMap()
	if err != nil {
		return err
	}

	res := app.loadModel(cmd.Context(), pkgs, file)
	for _, d := range res.Diagnostics {
		style := WarningStyle
		if d.IsError() {
			style = ErrorStyle
		}
		fmt.Fprintln(app.stderr, style.Render(d.String()))
	}
	if res.Model == nil {
		id := issueFor(res)
		ec := issue.NewErrorContext().
			WithOperation("load model").
			WithResource(file).
			WithIssue(id)
		if id == issue.FileNotFoundId {
			ec = ec.WithSuggestion("Check the path for typos")
		}
		return ec.Wrap(res.Err).BuildError()
	}

	writeModel(app.stdout, res.Model)

	if res.Err != nil {
		return issue.NewErrorContext().
			WithOperation("finalize model").
			WithResource(file).
			WithIssue(issueFor(res)).
			Wrap(res.Err).
			BuildError()
	}
	return nil
}

func writeModel(w io.Writer, m *urdf.Model) {
	fmt.Fprintf(w, "%s %s (instance %d)\n", TitleStyle.Render("Model"), NameStyle.Render(m.Name), m.Instance)
	fmt.Fprintln(w, SubtitleStyle.Render(m.File))

	section(w, "Links", len(m.Links))
	for _, l := range m.Links {
		mass := "-"
		if l.Inertial != nil {
			mass = formatFloat(l.Inertial.Mass) + " kg"
		}
		visual, collision := 0, 0
		for _, g := range l.Geometries {
			if g.Kind == urdf.GeometryCollision {
				collision++
			} else {
				visual++
			}
		}
		fmt.Fprintf(w, "  %s  mass %s, %d visual, %d collision\n", NameStyle.Render(l.Name), mass, visual, collision)
	}

	section(w, "Joints", len(m.Joints))
	for _, j := range m.Joints {
		fmt.Fprintf(w, "  %s  %s  %s -> %s", NameStyle.Render(j.Name), j.Type, j.Parent, j.Child)
		if lim := formatBounds(j.Limits.Position); lim != "" {
			fmt.Fprintf(w, "  position %s", lim)
		}
		if j.EffortLimit != 0 && !math.IsInf(j.EffortLimit, 1) {
			fmt.Fprintf(w, "  effort %s", formatFloat(j.EffortLimit))
		}
		fmt.Fprintln(w)
	}

	if len(m.Frames) > 0 {
		section(w, "Frames", len(m.Frames))
		for _, f := range m.Frames {
			fmt.Fprintf(w, "  %s  on %s\n", NameStyle.Render(f.Name), f.Link)
		}
	}

	if len(m.Actuators) > 0 {
		section(w, "Actuators", len(m.Actuators))
		for _, a := range m.Actuators {
			fmt.Fprintf(w, "  %s  joint %s, effort %s, gear ratio %s, rotor inertia %s\n",
				NameStyle.Render(a.Name), a.Joint, formatFloat(a.EffortLimit),
				formatFloat(a.GearRatio), formatFloat(a.RotorInertia))
		}
	}

	if len(m.Bushings) > 0 {
		section(w, "Bushings", len(m.Bushings))
		for _, b := range m.Bushings {
			fmt.Fprintf(w, "  %s <-> %s\n", NameStyle.Render(b.FrameA), NameStyle.Render(b.FrameC))
		}
	}

	if len(m.CollisionFilterGroups) > 0 {
		section(w, "Collision filter groups", len(m.CollisionFilterGroups))
		for _, g := range m.CollisionFilterGroups {
			fmt.Fprintf(w, "  %s  members [%s]", NameStyle.Render(g.Name), strings.Join(g.Members, ", "))
			if len(g.Ignores) > 0 {
				fmt.Fprintf(w, "  ignores [%s]", strings.Join(g.Ignores, ", "))
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "  %d filtered link pairs\n", len(m.FilteredLinkPairs))
		for _, p := range m.FilteredLinkPairs {
			fmt.Fprintf(w, "    %s / %s\n", p.A, p.B)
		}
	}

	if len(m.FreeLinks) > 0 {
		section(w, "Free links", len(m.FreeLinks))
		for _, name := range m.FreeLinks {
			fmt.Fprintf(w, "  %s\n", NameStyle.Render(name))
		}
	}
}

func section(w io.Writer, title string, n int) {
	fmt.Fprintln(w, sectionStyle.Render(fmt.Sprintf("%s (%d)", title, n)))
}

// formatBounds renders per-DOF bounds as "[lo, hi]" pairs, or "" when every
// degree of freedom is unbounded.
func formatBounds(b urdf.Bounds) string {
	if len(b.Lower) == 0 || b.IsUnbounded() {
		return ""
	}
	parts := make([]string, len(b.Lower))
	for i := range b.Lower {
		parts[i] = "[" + formatFloat(b.Lower[i]) + ", " + formatFloat(b.Upper[i]) + "]"
	}
	return strings.Join(parts, " ")
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}
