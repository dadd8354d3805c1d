package logger

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"
)

func newTestLogger(level Level) (Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewWithConfig(Config{Level: level, Writer: &buf, NoColor: true}), &buf
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newTestLogger(WarnLevel)

	l.Debug("hidden debug")
	l.Info("hidden info")
	l.Warn("shown warning")
	l.Errorf("shown %s", "error")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected debug and info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "WARN  shown warning") {
		t.Errorf("Expected warning line, got %q", out)
	}
	if !strings.Contains(out, "ERROR shown error") {
		t.Errorf("Expected error line, got %q", out)
	}
}

func TestWithPrefixNests(t *testing.T) {
	l, buf := newTestLogger(DebugLevel)

	l.WithPrefix("rover").WithPrefix("wheel-2").Info("vectoring")

	if !strings.Contains(buf.String(), "[rover/wheel-2] vectoring") {
		t.Errorf("Expected nested prefix, got %q", buf.String())
	}
}

func TestFieldsAreSorted(t *testing.T) {
	l, buf := newTestLogger(DebugLevel)

	l.WithFields(map[string]interface{}{"wheel": 3, "hazard": "sinking"}).WithField("attempt", 2).Info("retry")

	if !strings.Contains(buf.String(), "attempt=2 hazard=sinking wheel=3 retry") {
		t.Errorf("Expected sorted fields, got %q", buf.String())
	}
}

func TestChildrenShareOutput(t *testing.T) {
	l, buf := newTestLogger(InfoLevel)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		child := l.WithPrefix("worker")
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				child.Info("line")
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 400 {
		t.Fatalf("Expected 400 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if !strings.HasSuffix(line, "[worker] line") {
			t.Fatalf("Interleaved line: %q", line)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"fatal":   FatalLevel,
		"bogus":   InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestProgressBarClamps(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetNoColor(true)
	defer func() {
		SetOutput(os.Stdout)
		SetNoColor(false)
	}()

	bar := NewProgressBar(4, "cycles")
	bar.Update(2)
	if got := bar.Percent(); got != 0.5 {
		t.Errorf("Expected 50%%, got %v", got)
	}
	bar.Update(9)
	if got := bar.Percent(); got != 1 {
		t.Errorf("Expected clamp to 100%%, got %v", got)
	}
	bar.Stop()
	bar.Finish()

	if strings.Count(buf.String(), "\n") != 1 {
		t.Errorf("Expected exactly one line ending, got %q", buf.String())
	}

	empty := NewProgressBar(0, "none")
	empty.Increment()
	if empty.Percent() != 1 {
		t.Error("Expected empty bar to report complete")
	}
}

func TestTablePrint(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	table := NewTable("KEY", "NAME")
	table.AddRow("ffa", "FreeForAll")
	table.Print()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[2], "ffa  FreeForAll") {
		t.Errorf("Unexpected row %q", lines[2])
	}
}
