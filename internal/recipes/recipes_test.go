package recipes

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFromJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.jsonl")
	data := `{"id":"cake","title":"Cake","text":"2 cups flour"}
not json

{"title":"Page","text":"<p>1 cup sugar</p>","html":true}
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	items, err := LoadFromJSONL(path)
	if err != nil {
		t.Fatalf("LoadFromJSONL: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "cake" || items[0].Text != "2 cups flour" {
		t.Errorf("unexpected first item %+v", items[0])
	}
	if !items[1].HTML || !strings.HasSuffix(items[1].ID, ":4") {
		t.Errorf("unexpected second item %+v", items[1])
	}
}

func TestLoadFromJSONLEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.jsonl")
	os.WriteFile(path, []byte("\n\n"), 0o644)
	if _, err := LoadFromJSONL(path); err == nil {
		t.Error("expected error for file without items")
	}
}

func TestWriteJSONL(t *testing.T) {
	var buf bytes.Buffer
	err := WriteJSONL(&buf, []Converted{
		{ID: "a", Text: "240 grams flour", Lines: 1, Changed: 1},
		{ID: "b", Text: "x < y", Lines: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[1], `"x < y"`) {
		t.Errorf("html should not be escaped: %s", lines[1])
	}
}
