package structure

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Southclaws/fault/ftag"

	"midi2struct/layout"
)

func testDoc() *Document {
	return &Document{
		Version:       1,
		MinPitch:      27,
		NotesPerValue: 8,
		Repeat:        true,
		Blocks: []layout.Block{
			{Addr: 0, Value: 0x1234, Next: 1},
			{Addr: 1, Value: 0x5678, Next: layout.Terminal},
		},
	}
}

func TestWrite(t *testing.T) {
	t.Run("writes a parseable document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.json")
		if err := Write(testDoc(), path); err != nil {
			t.Fatalf("Write() failed: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading output: %v", err)
		}
		var got Document
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if got.Version != 1 || len(got.Blocks) != 2 || got.Blocks[1].Next != layout.Terminal {
			t.Errorf("round trip lost data: %+v", got)
		}
	})

	t.Run("output is world readable", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.json")
		if err := Write(testDoc(), path); err != nil {
			t.Fatalf("Write() failed: %v", err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if got := info.Mode().Perm(); got != 0644 {
			t.Errorf("output mode = %o, want 644", got)
		}
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		dir := t.TempDir()
		if err := Write(testDoc(), filepath.Join(dir, "out.json")); err != nil {
			t.Fatalf("Write() failed: %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), ".midi2struct-") {
				t.Errorf("temp file left behind: %s", e.Name())
			}
		}
		if len(entries) != 1 {
			t.Errorf("expected only the output file, found %d entries", len(entries))
		}
	})

	t.Run("unwritable destination fails tagged as output", func(t *testing.T) {
		err := Write(testDoc(), filepath.Join(t.TempDir(), "missing", "out.json"))
		if err == nil {
			t.Fatal("expected error for missing directory")
		}
		if ftag.Get(err) != ErrTag {
			t.Errorf("error kind = %q, want %q", ftag.Get(err), ErrTag)
		}
	})
}

func TestEncodeDeterminism(t *testing.T) {
	a, err := Encode(testDoc())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Encode(testDoc())
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("encoding is not deterministic")
	}
}
