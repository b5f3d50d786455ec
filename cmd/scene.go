package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/achilleasa/orrery/scene"
	"github.com/achilleasa/orrery/scene/reader"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// List the orbiting objects of a universe.
func ListOrbits(ctx *cli.Context) error {
	setupLogging(ctx)

	var (
		u   *scene.Universe
		err error
	)
	if ctx.NArg() == 1 {
		u, err = reader.ReadUniverse(ctx.Args().First())
	} else {
		u, err = reader.DefaultUniverse()
	}
	if err != nil {
		return err
	}

	t := ctx.Float64("time")
	snap := u.Snapshot(t)

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Object", "Class", "Parent", "Period (d)", "Bound (km)", "Distance from parent (km)"})

	count := 0
	for _, n := range u.Nodes() {
		if n.Orbit == nil || n.Parent == nil {
			continue
		}
		period := "-"
		if p := n.Orbit.Period(); p > 0 {
			period = fmt.Sprintf("%.3f", p)
		}
		table.Append([]string{
			strings.Repeat("  ", depthOf(n)-1) + n.Name,
			n.Class.String(),
			n.Parent.Name,
			period,
			fmt.Sprintf("%.4g", n.Orbit.BoundingRadius()),
			fmt.Sprintf("%.4g", snap.Position(n).Sub(snap.Position(n.Parent)).Len()),
		})
		count++
	}
	table.SetFooter([]string{"", "", "", "", "TOTAL", fmt.Sprint(count)})
	table.Render()

	logger.Noticef("orbits at t=%.2f days\n%s", t, buf.String())
	return nil
}

func depthOf(n *scene.Node) int {
	d := 0
	for ; n != nil; n = n.Parent {
		d++
	}
	return d
}
