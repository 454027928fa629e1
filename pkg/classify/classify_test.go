package classify

import "testing"

func TestClassify_ErrorMarkers(t *testing.T) {
	lines := []string{
		"[ERROR] disk full",
		"[2024-03-01 10:00:00] [ERROR] cannot open backup file",
		"[FATAL] unrecoverable page corruption",
	}
	for _, line := range lines {
		if got := Classify(line); got != Error {
			t.Errorf("Classify(%q) = %v, want Error", line, got)
		}
	}
}

func TestClassify_WarningMarkers(t *testing.T) {
	lines := []string{
		"[WARN ] low memory",
		"[2024-03-01 10:00:00] [WARN ] backupset 2 skipped",
		"[WARN] deprecated option",
	}
	for _, line := range lines {
		if got := Classify(line); got != Warning {
			t.Errorf("Classify(%q) = %v, want Warning", line, got)
		}
	}
}

func TestClassify_Info(t *testing.T) {
	lines := []string{
		"rows: 100",
		"Reading backup header...",
		"",
		"warning spelled out does not count",
	}
	for _, line := range lines {
		if got := Classify(line); got != Info {
			t.Errorf("Classify(%q) = %v, want Info", line, got)
		}
	}
}

func TestClassify_ErrorWinsOverWarning(t *testing.T) {
	line := "[WARN ] retry failed: [ERROR] giving up"
	if got := Classify(line); got != Error {
		t.Errorf("Classify(%q) = %v, want Error", line, got)
	}
}

func TestSeverity_String(t *testing.T) {
	cases := map[Severity]string{
		Info:    "info",
		Warning: "warning",
		Error:   "error",
	}
	for sev, want := range cases {
		if got := sev.String(); got != want {
			t.Errorf("Severity(%d).String() = %q, want %q", sev, got, want)
		}
	}
}
