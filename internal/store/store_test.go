package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"confhub/internal/props"
)

func open(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "config.properties"), props.UTF8)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestOpenCreatesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.properties")
	s, err := Open(file, props.UTF8)
	if err != nil {
		t.Fatal(err)
	}
	if s.Size() != 0 {
		t.Fatalf("Size = %d, want 0", s.Size())
	}
	if _, err := os.Stat(file); err != nil {
		t.Fatalf("backing file should exist after first activation: %v", err)
	}
}

func TestOpenLoadsExistingFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.properties")
	if err := os.WriteFile(file, []byte("color=blue\nsize=large\n"), 0600); err != nil {
		t.Fatal(err)
	}

	s, err := Open(file, props.UTF8)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Get("color"); got != "blue" {
		t.Fatalf("color = %q, want %q", got, "blue")
	}
	if s.Size() != 2 {
		t.Fatalf("Size = %d, want 2", s.Size())
	}
}

func TestOpenUnreadableFile(t *testing.T) {
	// A directory satisfies the existence check but cannot be read as a
	// file, which must fail construction rather than degrade silently.
	dir := t.TempDir()
	file := filepath.Join(dir, "config.properties")
	if err := os.Mkdir(file, 0700); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(file, props.UTF8); err == nil {
		t.Fatal("expected Open to fail on unreadable backing file")
	}
}

func TestOpenMalformedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.properties")
	if err := os.WriteFile(file, []byte(`key=\u00zz`), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(file, props.UTF8); err == nil {
		t.Fatal("expected Open to fail on malformed backing file")
	}
}

func TestGetMissingKey(t *testing.T) {
	s := open(t)
	if _, ok := s.Get("missing"); ok {
		t.Fatal("expected not found")
	}
	if s.Contains("missing") {
		t.Fatal("expected Contains false")
	}
}

func TestPutAndGet(t *testing.T) {
	s := open(t)
	s.Put("color", "blue")
	got, ok := s.Get("color")
	if !ok || got != "blue" {
		t.Fatalf("Get = %q,%v, want blue,true", got, ok)
	}
	if !s.Contains("color") {
		t.Fatal("Contains = false, want true")
	}

	s.Put("color", "red")
	if got, _ := s.Get("color"); got != "red" {
		t.Fatalf("overwrite: Get = %q, want red", got)
	}
	if s.Size() != 1 {
		t.Fatalf("Size = %d, want 1", s.Size())
	}
}

func TestPutAll(t *testing.T) {
	s := open(t)
	s.Put("existing", "kept")

	n := s.PutAll(map[string]string{"a": "1", "b": "2"})
	if n != 2 {
		t.Fatalf("PutAll = %d, want 2", n)
	}

	snap := s.Snapshot()
	want := map[string]string{"existing": "kept", "a": "1", "b": "2"}
	if len(snap) != len(want) {
		t.Fatalf("Snapshot len = %d, want %d", len(snap), len(want))
	}
	for k, v := range want {
		if snap[k] != v {
			t.Errorf("key %q = %q, want %q", k, snap[k], v)
		}
	}
}

func TestPutAllCountsUnchangedOverwrites(t *testing.T) {
	s := open(t)
	s.Put("a", "1")
	if n := s.PutAll(map[string]string{"a": "1"}); n != 1 {
		t.Fatalf("PutAll = %d, want 1 even when the value is unchanged", n)
	}
}

func TestRemove(t *testing.T) {
	s := open(t)
	s.Put("color", "blue")

	if !s.Remove("color") {
		t.Fatal("Remove existing = false, want true")
	}
	if s.Contains("color") {
		t.Fatal("key should be gone after Remove")
	}
	if s.Remove("color") {
		t.Fatal("Remove missing = true, want false")
	}
	if s.Size() != 0 {
		t.Fatalf("Size = %d, want 0", s.Size())
	}
}

func TestClear(t *testing.T) {
	s := open(t)
	for i := 0; i < 5; i++ {
		s.Put(fmt.Sprintf("key-%d", i), "v")
	}
	if n := s.Clear(); n != 5 {
		t.Fatalf("Clear = %d, want 5", n)
	}
	if s.Size() != 0 {
		t.Fatalf("Size = %d after Clear, want 0", s.Size())
	}
	if n := s.Clear(); n != 0 {
		t.Fatalf("Clear of empty store = %d, want 0", n)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.properties")
	s, err := Open(file, props.UTF8)
	if err != nil {
		t.Fatal(err)
	}
	s.Put("color", "blue")
	s.Put("city", "São Paulo")
	s.Put("note", "line1\nline2")
	if err := s.Save(""); err != nil {
		t.Fatal(err)
	}

	// Fresh activation against the same file.
	again, err := Open(file, props.UTF8)
	if err != nil {
		t.Fatal(err)
	}
	want := s.Snapshot()
	got := again.Snapshot()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("key %q = %q, want %q", k, got[k], v)
		}
	}
}

func TestLoadReplacesNotMerges(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.properties")
	s, err := Open(file, props.UTF8)
	if err != nil {
		t.Fatal(err)
	}
	s.Put("on-disk", "yes")
	if err := s.Save(""); err != nil {
		t.Fatal(err)
	}

	s.Put("memory-only", "doomed")
	if err := s.Load(); err != nil {
		t.Fatal(err)
	}

	if s.Contains("memory-only") {
		t.Fatal("Load must discard entries absent from the file")
	}
	if got, _ := s.Get("on-disk"); got != "yes" {
		t.Fatalf("on-disk = %q, want yes", got)
	}
}

func TestSaveFailureLeavesMemoryIntact(t *testing.T) {
	s := open(t)
	s.Put("a", "1")

	// Point the store at an unwritable path.
	s.file = filepath.Join(t.TempDir(), "no", "such", "dir", "config.properties")
	if err := s.Save(""); err == nil {
		t.Fatal("expected Save to fail")
	}
	if got, _ := s.Get("a"); got != "1" {
		t.Fatalf("a = %q after failed save, want 1", got)
	}
}

func TestSaveComments(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.properties")
	s, err := Open(file, props.UTF8)
	if err != nil {
		t.Fatal(err)
	}
	s.Put("a", "1")
	if err := s.Save("snapshot for migration"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if string(data[:2]) != "# " {
		t.Fatalf("file should open with a comment block, got:\n%s", data)
	}

	again, err := Open(file, props.UTF8)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := again.Get("a"); got != "1" {
		t.Fatalf("a = %q after reload, want 1", got)
	}
}

func TestConcurrentDisjointPuts(t *testing.T) {
	s := open(t)
	const writers = 32

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Put(fmt.Sprintf("key-%d", i), fmt.Sprintf("value-%d", i))
		}(i)
	}
	wg.Wait()

	if s.Size() != writers {
		t.Fatalf("Size = %d, want %d (lost update)", s.Size(), writers)
	}
	for i := 0; i < writers; i++ {
		got, ok := s.Get(fmt.Sprintf("key-%d", i))
		if !ok || got != fmt.Sprintf("value-%d", i) {
			t.Fatalf("key-%d = %q,%v", i, got, ok)
		}
	}
}

func TestConcurrentPutsDuringSave(t *testing.T) {
	s := open(t)
	s.Put("seed", "0")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Put(fmt.Sprintf("w%d-%d", i, j), "v")
			}
		}(i)
	}
	// Saves interleave with the writers; they must not deadlock or error.
	for i := 0; i < 5; i++ {
		if err := s.Save(""); err != nil {
			t.Fatal(err)
		}
	}
	wg.Wait()

	if err := s.Save(""); err != nil {
		t.Fatal(err)
	}
	again, err := Open(s.File(), props.UTF8)
	if err != nil {
		t.Fatal(err)
	}
	if again.Size() != s.Size() {
		t.Fatalf("reloaded size = %d, want %d", again.Size(), s.Size())
	}
}
