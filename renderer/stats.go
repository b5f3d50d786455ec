package renderer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
)

type FrameStats struct {
	// Frame number.
	Frame uint64

	// Faintest magnitude used for culling.
	FaintestMag float32

	// Render list composition.
	RenderListEntries int
	OrbitPaths        int
	DeepSkyObjects    int
	LightLists        int

	// Depth partitions used.
	Partitions int

	// Star buffer activity.
	StarBatches int
	StarsDrawn  int

	// Annotation queues.
	ForegroundLabels int
	BackgroundLabels int
	SortedLabels     int
	DroppedLabels    int

	// Orbit cache activity.
	OrbitCacheEntries   int
	OrbitCacheHits      uint64
	OrbitSamples        uint64
	OrbitCacheEvictions int

	// Eclipse shadows found.
	Shadows int

	// Total render time for entire frame.
	RenderTime time.Duration
}

// Format the stats as a table.
func (s FrameStats) Table() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	rows := [][2]interface{}{
		{"frame", s.Frame},
		{"faintest magnitude", fmt.Sprintf("%.2f", s.FaintestMag)},
		{"render list entries", s.RenderListEntries},
		{"orbit paths", s.OrbitPaths},
		{"deep-sky objects", s.DeepSkyObjects},
		{"light lists", s.LightLists},
		{"depth partitions", s.Partitions},
		{"star batches", s.StarBatches},
		{"stars drawn", s.StarsDrawn},
		{"labels (fg/bg/sorted)", fmt.Sprintf("%d/%d/%d", s.ForegroundLabels, s.BackgroundLabels, s.SortedLabels)},
		{"dropped labels", s.DroppedLabels},
		{"orbit cache entries", s.OrbitCacheEntries},
		{"orbit cache hits", s.OrbitCacheHits},
		{"orbit samples computed", s.OrbitSamples},
		{"orbit cache evictions", s.OrbitCacheEvictions},
		{"eclipse shadows", s.Shadows},
	}
	for _, row := range rows {
		table.Append([]string{fmt.Sprint(row[0]), fmt.Sprint(row[1])})
	}
	table.SetFooter([]string{"render time", s.RenderTime.String()})
	table.Render()

	return buf.String()
}
