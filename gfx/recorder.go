package gfx

import (
	"fmt"

	"github.com/achilleasa/orrery/types"
)

// Op identifies a recorded Context call.
type Op uint8

const (
	OpBeginFrame Op = iota
	OpSetDepthRange
	OpDrawStars
	OpDrawBody
	OpDrawLines
	OpDrawLabel
	OpEndFrame
)

var opNames = []string{"BeginFrame", "SetDepthRange", "DrawStars", "DrawBody", "DrawLines", "DrawLabel", "EndFrame"}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", op)
}

// A Command is one recorded Context call. Only the fields relevant to Op are
// populated.
type Command struct {
	Op Op

	View      View
	Near, Far float32
	Stars     StarBatch
	Body      Body
	LineMode  LineMode
	Points    []types.Vec3
	Color     types.Color
	Label     Label
}

// The Recorder is a Context that keeps an ordered log of every call. It is
// used by tests and by the stats command to inspect frame composition.
type Recorder struct {
	Caps     Capability
	Commands []Command
}

// Create a recorder advertising the given capabilities.
func NewRecorder(caps Capability) *Recorder {
	return &Recorder{Caps: caps}
}

func (r *Recorder) Capabilities() Capability {
	return r.Caps
}

func (r *Recorder) BeginFrame(v View) {
	r.Commands = r.Commands[:0]
	r.Commands = append(r.Commands, Command{Op: OpBeginFrame, View: v})
}

func (r *Recorder) SetDepthRange(near, far float32) {
	r.Commands = append(r.Commands, Command{Op: OpSetDepthRange, Near: near, Far: far})
}

func (r *Recorder) DrawStars(b StarBatch) {
	// The caller reuses its vertex storage after the call returns.
	b.Vertices = append([]StarVertex(nil), b.Vertices...)
	r.Commands = append(r.Commands, Command{Op: OpDrawStars, Stars: b})
}

func (r *Recorder) DrawBody(b Body) {
	b.Lights = append([]Light(nil), b.Lights...)
	b.Shadows = append([]Shadow(nil), b.Shadows...)
	r.Commands = append(r.Commands, Command{Op: OpDrawBody, Body: b})
}

func (r *Recorder) DrawLines(mode LineMode, points []types.Vec3, col types.Color) {
	r.Commands = append(r.Commands, Command{
		Op:       OpDrawLines,
		LineMode: mode,
		Points:   append([]types.Vec3(nil), points...),
		Color:    col,
	})
}

func (r *Recorder) DrawLabel(l Label) {
	r.Commands = append(r.Commands, Command{Op: OpDrawLabel, Label: l})
}

func (r *Recorder) EndFrame() {
	r.Commands = append(r.Commands, Command{Op: OpEndFrame})
}

// Count recorded commands with the given op.
func (r *Recorder) Count(op Op) int {
	count := 0
	for _, cmd := range r.Commands {
		if cmd.Op == op {
			count++
		}
	}
	return count
}

// Return the recorded commands with the given op in call order.
func (r *Recorder) Filter(op Op) []Command {
	var out []Command
	for _, cmd := range r.Commands {
		if cmd.Op == op {
			out = append(out, cmd)
		}
	}
	return out
}

// Total number of stars drawn across all star batches.
func (r *Recorder) StarCount() int {
	count := 0
	for _, cmd := range r.Commands {
		if cmd.Op == OpDrawStars {
			count += cmd.Stars.Count
		}
	}
	return count
}
