package cmd

import (
	"bytes"
	"strings"

	"github.com/achilleasa/orrery/gfx"
	"github.com/achilleasa/orrery/renderer"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// List the render flags, label categories and star styles accepted by the
// render commands and the settings file.
func ListFlags(ctx *cli.Context) error {
	setupLogging(ctx)

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Setting", "Name", "Default"})

	def := renderer.DefaultConfig()
	appendNames(table, "flags", renderer.RenderFlagNames(), def.RenderFlags.Names())
	appendNames(table, "labels", renderer.LabelModeNames(), def.LabelMode.Names())

	styles := make([]string, 0, 3)
	for _, s := range []renderer.StarStyle{renderer.FuzzyPointStars, renderer.PointStars, renderer.ScaledDiscStars} {
		styles = append(styles, s.String())
	}
	appendNames(table, "star_style", styles, []string{def.StarStyle.String()})

	markers := make([]string, 0, 8)
	for sym := gfx.MarkerDiamond; sym <= gfx.MarkerSelection; sym++ {
		markers = append(markers, sym.String())
	}
	appendNames(table, "marker symbol", markers, []string{gfx.MarkerDiamond.String()})

	table.Render()
	logger.Noticef("available settings\n%s", buf.String())
	return nil
}

func appendNames(table *tablewriter.Table, setting string, names, defaults []string) {
	enabled := make(map[string]bool, len(defaults))
	for _, name := range defaults {
		enabled[name] = true
	}
	for index, name := range names {
		label := ""
		if index == 0 {
			label = setting
		}
		mark := ""
		if enabled[name] {
			mark = "yes"
		}
		table.Append([]string{label, name, mark})
	}
	table.Append([]string{"", strings.Repeat("-", 3), ""})
}
