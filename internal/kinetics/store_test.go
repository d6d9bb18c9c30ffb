package kinetics

import (
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *ResultStore {
	t.Helper()
	store, err := OpenResultStore(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("OpenResultStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestResultStoreSaveLoad(t *testing.T) {
	store := openTestStore(t)

	in := sampleResult("traj-1")
	if err := store.Save(in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := store.Load("traj-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if in != out {
		t.Errorf("loaded result differs: in=%+v out=%+v", in, out)
	}
}

func TestResultStoreNotFound(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.Load("nope"); !errors.Is(err, ErrResultNotFound) {
		t.Errorf("Load of missing ID: err=%v, want ErrResultNotFound", err)
	}
}

func TestResultStoreUpsert(t *testing.T) {
	store := openTestStore(t)

	r := sampleResult("traj-1")
	if err := store.Save(r); err != nil {
		t.Fatalf("Save: %v", err)
	}
	r.Steps = 999
	if err := store.Save(r); err != nil {
		t.Fatalf("re-Save: %v", err)
	}

	out, err := store.Load("traj-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.Steps != 999 {
		t.Errorf("steps = %d, want upserted 999", out.Steps)
	}
}

func TestResultStoreListBySystem(t *testing.T) {
	store := openTestStore(t)

	a := sampleResult("a")
	a.SystemName = "hairpin"
	a.CompletedAt = 100
	b := sampleResult("b")
	b.SystemName = "duplex"
	b.CompletedAt = 200
	c := sampleResult("c")
	c.SystemName = "hairpin"
	c.CompletedAt = 300

	for _, r := range []TrajectoryResult{a, b, c} {
		if err := store.Save(r); err != nil {
			t.Fatalf("Save %s: %v", r.ID, err)
		}
	}

	hairpin, err := store.ListBySystem("hairpin")
	if err != nil {
		t.Fatalf("ListBySystem: %v", err)
	}
	if len(hairpin) != 2 || hairpin[0].ID != "c" || hairpin[1].ID != "a" {
		t.Errorf("hairpin list = %+v, want [c a] newest first", hairpin)
	}

	all, err := store.ListBySystem("")
	if err != nil {
		t.Fatalf("ListBySystem all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all list has %d results, want 3", len(all))
	}
}

func TestResultStoreRejectsInvalid(t *testing.T) {
	store := openTestStore(t)
	if err := store.Save(TrajectoryResult{}); err == nil {
		t.Error("invalid result accepted")
	}
}
