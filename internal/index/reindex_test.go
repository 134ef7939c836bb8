package index

import "testing"

func TestShouldReindex(t *testing.T) {
	onDisk := map[string]string{"a": "h1", "b": "h2"}

	if ShouldReindex(IndexVersion, onDisk, map[string]string{"a": "h1", "b": "h2"}) {
		t.Fatal("same version and hash set should not trigger a reindex")
	}
	if !ShouldReindex(IndexVersion-1, onDisk, map[string]string{"a": "h1", "b": "h2"}) {
		t.Fatal("stale on-disk version must trigger a reindex")
	}
	if !ShouldReindex(IndexVersion, onDisk, map[string]string{"a": "h1", "b": "h2", "c": "h3"}) {
		t.Fatal("an unknown path must trigger a reindex")
	}
	if !ShouldReindex(IndexVersion, onDisk, map[string]string{"a": "h1", "b": "h2-changed"}) {
		t.Fatal("a changed hash for a known path must trigger a reindex")
	}
	if ShouldReindex(IndexVersion, onDisk, map[string]string{"a": "h1"}) {
		t.Fatal("a disappeared known file must not trigger a reindex")
	}
}
