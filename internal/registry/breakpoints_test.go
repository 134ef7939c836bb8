package registry

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndListBreakpoints(t *testing.T) {
	db := openTestDB(t)

	bp := &Breakpoint{File: "Foo.scala", Line: 42, Condition: "x > 0", Active: true, CreatedAt: time.Now().Truncate(time.Second)}
	if err := db.SaveBreakpoint(bp); err != nil {
		t.Fatal(err)
	}

	got, err := db.ListBreakpoints()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("ListBreakpoints() returned %d rows, want 1", len(got))
	}
	if got[0].File != "Foo.scala" || got[0].Line != 42 {
		t.Errorf("got %+v, want File=Foo.scala Line=42", got[0])
	}
	if got[0].Condition != "x > 0" {
		t.Errorf("Condition = %q, want %q", got[0].Condition, "x > 0")
	}
	if !got[0].Active {
		t.Error("Active = false, want true")
	}
}

func TestSaveBreakpointUpsertsOnConflict(t *testing.T) {
	db := openTestDB(t)

	bp := &Breakpoint{File: "Foo.scala", Line: 42, CreatedAt: time.Now()}
	if err := db.SaveBreakpoint(bp); err != nil {
		t.Fatal(err)
	}
	bp.Condition = "y < 10"
	if err := db.SaveBreakpoint(bp); err != nil {
		t.Fatal(err)
	}

	got, err := db.ListBreakpoints()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("ListBreakpoints() returned %d rows, want 1 (upsert, not duplicate)", len(got))
	}
	if got[0].Condition != "y < 10" {
		t.Errorf("Condition = %q, want %q", got[0].Condition, "y < 10")
	}
}

func TestSetBreakpointActiveNotFound(t *testing.T) {
	db := openTestDB(t)
	if err := db.SetBreakpointActive("Missing.scala", 1, true); err == nil {
		t.Fatal("expected error for nonexistent breakpoint")
	}
}

func TestDeleteBreakpointAndDeleteAll(t *testing.T) {
	db := openTestDB(t)
	db.SaveBreakpoint(&Breakpoint{File: "A.scala", Line: 1, CreatedAt: time.Now()})
	db.SaveBreakpoint(&Breakpoint{File: "B.scala", Line: 2, CreatedAt: time.Now()})

	if err := db.DeleteBreakpoint("A.scala", 1); err != nil {
		t.Fatal(err)
	}
	got, _ := db.ListBreakpoints()
	if len(got) != 1 || got[0].File != "B.scala" {
		t.Fatalf("after DeleteBreakpoint, got %+v, want only B.scala", got)
	}

	if err := db.DeleteAllBreakpoints(); err != nil {
		t.Fatal(err)
	}
	got, _ = db.ListBreakpoints()
	if len(got) != 0 {
		t.Fatalf("after DeleteAllBreakpoints, got %d rows, want 0", len(got))
	}
}
