package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestAssertNoError_NilErr(t *testing.T) {
	AssertNoError(t, nil)
}

func TestAssertError_WithErr(t *testing.T) {
	AssertError(t, errors.New("something wrong"))
}

func TestWriteTempFile(t *testing.T) {
	path := WriteTempFile(t, "explorer.json", `{"max_speed": 3}`)
	if filepath.Base(path) != "explorer.json" {
		t.Errorf("base = %s, want explorer.json", filepath.Base(path))
	}
	b, err := os.ReadFile(path)
	AssertNoError(t, err)
	if string(b) != `{"max_speed": 3}` {
		t.Errorf("content = %q", b)
	}
}

func TestTempDBPath(t *testing.T) {
	a, b := TempDBPath(t), TempDBPath(t)
	if a == b {
		t.Errorf("expected distinct paths, got %s twice", a)
	}
	if _, err := os.Stat(filepath.Dir(a)); err != nil {
		t.Errorf("parent dir missing: %v", err)
	}
}
