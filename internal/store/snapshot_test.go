package store

import (
	"strings"
	"testing"
)

// #region round-trip

func TestSnapshot_ExportImportRoundTrip(t *testing.T) {
	src := NewMemory()
	if err := src.PutUser(sampleUser()); err != nil {
		t.Fatalf("put user: %v", err)
	}
	if err := src.PutConcept(sampleConcept()); err != nil {
		t.Fatalf("put concept: %v", err)
	}

	snap, err := Export(src)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := EncodeSnapshot(snap)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	dst := NewMemory()
	if err := Import(dst, decoded); err != nil {
		t.Fatalf("import: %v", err)
	}

	u, ok, _ := dst.GetUser("u1")
	if !ok {
		t.Fatal("user lost in round trip")
	}
	if u.Theta != 0.42 || u.ConceptMastery["loops"] != 0.55 {
		t.Fatalf("user state mangled: %+v", u)
	}
	ci := u.ConfidenceIntervals["loops"]
	if ci.Lower != 0.2 || ci.Upper != 0.9 {
		t.Fatalf("interval mangled: %+v", ci)
	}
	p, ok, _ := dst.GetConcept("loops")
	if !ok || p != sampleConcept() {
		t.Fatalf("concept mangled: %+v", p)
	}
}

// #endregion round-trip

// #region wire-format

func TestSnapshot_FieldNames(t *testing.T) {
	// Snapshot files are read back by other tooling; the exact key names
	// are part of the format.
	repo := NewMemory()
	if err := repo.PutUser(sampleUser()); err != nil {
		t.Fatalf("put user: %v", err)
	}
	if err := repo.PutConcept(sampleConcept()); err != nil {
		t.Fatalf("put concept: %v", err)
	}

	snap, err := Export(repo)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := EncodeSnapshot(snap)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	text := string(data)
	for _, key := range []string{
		`"user_states"`,
		`"concept_params"`,
		`"user_id"`,
		`"concept_mastery"`,
		`"theta"`,
		`"confidence_intervals"`,
		`"concept_id"`,
		`"beta"`,
		`"slip"`,
		`"guess"`,
		`"learn"`,
		`"transit"`,
		`"discrimination"`,
	} {
		if !strings.Contains(text, key) {
			t.Fatalf("snapshot missing key %s:\n%s", key, text)
		}
	}
}

func TestSnapshot_IntervalsAsPairs(t *testing.T) {
	repo := NewMemory()
	if err := repo.PutUser(sampleUser()); err != nil {
		t.Fatalf("put user: %v", err)
	}

	snap, err := Export(repo)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	pair := snap.UserStates["u1"].ConfidenceIntervals["loops"]
	if pair[0] != 0.2 || pair[1] != 0.9 {
		t.Fatalf("expected [0.2 0.9], got %v", pair)
	}
}

func TestDecodeSnapshot_Empty(t *testing.T) {
	snap, err := DecodeSnapshot([]byte(`{}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.UserStates == nil || snap.ConceptParams == nil {
		t.Fatal("decode left nil maps")
	}
}

func TestDecodeSnapshot_Malformed(t *testing.T) {
	if _, err := DecodeSnapshot([]byte(`{"user_states": [`)); err == nil {
		t.Fatal("expected error for malformed snapshot")
	}
}

// #endregion wire-format

// #region import-keying

func TestImport_FallsBackToMapKey(t *testing.T) {
	// Older snapshot files omit the redundant inner id fields; the map
	// key is authoritative then.
	snap := Snapshot{
		UserStates: map[string]SnapshotUser{
			"u9": {Theta: 1.1, ConceptMastery: map[string]float64{"loops": 0.7}},
		},
		ConceptParams: map[string]SnapshotConcept{
			"loops": {Beta: 0.5},
		},
	}

	repo := NewMemory()
	if err := Import(repo, snap); err != nil {
		t.Fatalf("import: %v", err)
	}
	if _, ok, _ := repo.GetUser("u9"); !ok {
		t.Fatal("user not keyed from map")
	}
	p, ok, _ := repo.GetConcept("loops")
	if !ok || p.ConceptID != "loops" {
		t.Fatalf("concept not keyed from map: %+v", p)
	}
}

// #endregion import-keying
