package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type testItem struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
}

// --- NewWriter Factory Tests ---

func TestNewWriter_Formats(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatJSON, "*output.JSONWriter"},
		{FormatJSONL, "*output.JSONLWriter"},
		{FormatYAML, "*output.YAMLWriter"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			w, err := NewWriter(&bytes.Buffer{}, tt.format)
			if err != nil {
				t.Fatalf("NewWriter() error = %v", err)
			}
			switch w.(type) {
			case *JSONWriter, *JSONLWriter, *YAMLWriter:
			default:
				t.Errorf("unexpected writer %T, want %s", w, tt.want)
			}
		})
	}
}

func TestNewWriter_UnsupportedFormat(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, Format("csv"))
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected error containing 'unsupported', got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"JSONL", FormatJSONL, false},
		{"yaml", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormat_Extension(t *testing.T) {
	if got := FormatJSON.Extension(); got != ".json" {
		t.Errorf("json extension = %q", got)
	}
	if got := FormatYAML.Extension(); got != ".yaml" {
		t.Errorf("yaml extension = %q", got)
	}
}

// --- JSONWriter Tests ---

func TestJSONWriter_DefaultIndentIsFourSpaces(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, FormatJSON)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	if err := w.Write([]testItem{{Name: "BIOS", Version: "02.61"}}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	want := "[\n    {\n        \"name\": \"BIOS\",\n        \"version\": \"02.61\"\n    }\n]\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestJSONWriter_Compact(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, "")

	if err := w.Write(testItem{Name: "a", Version: "1"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if got := buf.String(); got != "{\"name\":\"a\",\"version\":\"1\"}\n" {
		t.Errorf("output = %q", got)
	}
}

func TestJSONWriter_CustomIndent(t *testing.T) {
	buf := &bytes.Buffer{}
	w, _ := NewWriter(buf, FormatJSON, WithIndent("\t"))

	_ = w.Write(testItem{Name: "a"})
	_ = w.Close()

	if !strings.Contains(buf.String(), "\t\"name\"") {
		t.Errorf("expected tab indentation, got %q", buf.String())
	}
}

// --- JSONLWriter Tests ---

func TestJSONLWriter_SeparateLines(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONLWriter(buf)

	_ = w.Write(testItem{Name: "first"})
	_ = w.Write(testItem{Name: "second"})
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	var second testItem
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("line 2 is not JSON: %v", err)
	}
	if second.Name != "second" {
		t.Errorf("second line name = %q", second.Name)
	}
}

// --- YAMLWriter Tests ---

func TestYAMLWriter_Write(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewYAMLWriter(buf)

	if err := w.Write([]testItem{{Name: "BIOS", Version: "02.61"}}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	var got []testItem
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if len(got) != 1 || got[0].Version != "02.61" {
		t.Errorf("unexpected round trip: %+v", got)
	}
}

// --- WriteFile Tests ---

func TestWriteFile_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "nested", "product.json")

	size, err := WriteFile(path, FormatJSON, []testItem{{Name: "a"}})
	if err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if size != int64(len(b)) {
		t.Errorf("size = %d, file has %d bytes", size, len(b))
	}
}

func TestWriteFile_SingleRecordStaysAnArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.json")

	if _, err := WriteFile(path, FormatJSON, []testItem{{Name: "only"}}); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	b, _ := os.ReadFile(path)
	var got []testItem
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("expected a JSON array, got %q: %v", b, err)
	}
}

func TestWriteFile_NilRecordsWriteEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	if _, err := WriteFile[testItem](path, FormatJSON, nil); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	b, _ := os.ReadFile(path)
	if got := strings.TrimSpace(string(b)); got != "[]" {
		t.Errorf("content = %q, want []", got)
	}
}

func TestWriteFile_JSONLOneRecordPerLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.jsonl")

	records := []testItem{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	if _, err := WriteFile(path, FormatJSONL, records); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	b, _ := os.ReadFile(path)
	if n := strings.Count(string(b), "\n"); n != 3 {
		t.Errorf("expected 3 lines, got %d", n)
	}
}

func TestWriteFile_OverwritesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	if err := os.WriteFile(path, []byte(strings.Repeat("x", 4096)), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := WriteFile(path, FormatJSON, []testItem{{Name: "new"}}); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	b, _ := os.ReadFile(path)
	if strings.Contains(string(b), "xxx") {
		t.Error("old content should be truncated")
	}
}
