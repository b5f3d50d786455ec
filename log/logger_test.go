package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer func() {
		SetSink(os.Stdout)
		SetLevel(Notice)
	}()

	logger := New("level-test")
	SetLevel(Warning)
	logger.Info("hidden")
	logger.Warning("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected info message to be filtered; got %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "[level-test]") {
		t.Fatalf("expected warning message with module name; got %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	type spec struct {
		in     string
		exp    Level
		expErr bool
	}
	specs := []spec{
		{"debug", Debug, false},
		{" Warning ", Warning, false},
		{"ERROR", Error, false},
		{"chatty", Notice, true},
	}

	for index, s := range specs {
		level, err := ParseLevel(s.in)
		if s.expErr != (err != nil) {
			t.Fatalf("[spec %d] expected error %t; got %v", index, s.expErr, err)
		}
		if level != s.exp {
			t.Fatalf("[spec %d] expected level %d; got %d", index, s.exp, level)
		}
	}
}
