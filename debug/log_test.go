package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnableWritesCategories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	if err := EnableAt(path); err != nil {
		t.Fatalf("EnableAt: %v", err)
	}
	Log("gesture", "press %s", "8B")
	for i := 0; i < 4; i++ {
		LogEvery(2, "pad", "motion")
	}
	Disable()
	Log("gesture", "after disable")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{"Debug logging started", "gesture", "press 8B", "every 2, count=4"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "after disable") {
		t.Error("logged after Disable")
	}
}

func TestDisabledLoggerIsNop(t *testing.T) {
	if Logger() == nil {
		t.Fatal("Logger() returned nil")
	}
	Log("x", "nothing happens")
}
