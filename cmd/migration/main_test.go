package main

import (
	"strings"
	"testing"
)

func TestParseSteps(t *testing.T) {
	if got, err := parseSteps(nil); err != nil || got != 1 {
		t.Fatalf("expected default of 1 step, got %d err=%v", got, err)
	}
	if _, err := parseSteps([]string{"0"}); err == nil {
		t.Fatalf("expected error for zero steps")
	}
	if got, err := parseSteps([]string{" 3 "}); err != nil || got != 3 {
		t.Fatalf("expected 3 steps, got %d err=%v", got, err)
	}
}

func TestParseVersion(t *testing.T) {
	if _, err := parseVersion("-1"); err == nil {
		t.Fatalf("expected error for negative version")
	}
	if got, err := parseVersion("1791936000"); err != nil || got != 1791936000 {
		t.Fatalf("unexpected version %d err=%v", got, err)
	}
}

func TestNormalizeDBURL_DefaultsToDisablingBinaryResults(t *testing.T) {
	t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "")
	got := normalizeDBURL("postgres://u:p@localhost:5432/sportunion_stats?sslmode=disable")
	if !strings.Contains(got, "disable_prepared_binary_result=yes") {
		t.Fatalf("expected flag appended, got %q", got)
	}

	t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "false")
	in := "postgres://u:p@localhost:5432/sportunion_stats"
	if got := normalizeDBURL(in); got != in {
		t.Fatalf("expected url unchanged, got %q", got)
	}
}
