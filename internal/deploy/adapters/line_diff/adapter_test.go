package linediff

import (
	"strings"
	"testing"
)

func TestComputeDiff(t *testing.T) {
	a := New()

	diff := a.ComputeDiff("my-app (deployed)", "my-app (proposed)",
		[]byte("replicas: 1\nimage: v1\n"),
		[]byte("replicas: 3\nimage: v1\n"),
	)

	if !strings.Contains(diff, "-replicas: 1") || !strings.Contains(diff, "+replicas: 3") {
		t.Errorf("diff missing expected hunks:\n%s", diff)
	}
	if !strings.Contains(diff, "my-app (deployed)") {
		t.Errorf("diff missing from-label:\n%s", diff)
	}
}

func TestComputeDiffIdentical(t *testing.T) {
	a := New()
	if diff := a.ComputeDiff("a", "b", []byte("same\n"), []byte("same\n")); diff != "" {
		t.Errorf("identical inputs produced diff: %q", diff)
	}
}
