package repl

import (
	"strings"
	"testing"
)

func TestDiagnosticsNoColorPlainText(t *testing.T) {
	var out strings.Builder
	cfg := Config{NoColor: true, Out: &out}

	Success(cfg, "executed")
	Error(cfg, "boom %d", 42)
	Log(cfg, "unreachable")

	got := out.String()
	for _, want := range []string{"executed\n", "boom 42\n", "unreachable\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
	if strings.Contains(got, "\x1b[") {
		t.Errorf("NoColor output should not contain ANSI escapes: %q", got)
	}
}
