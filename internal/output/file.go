package output

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile stores records at path in the given format, creating parent
// directories as needed. JSON and YAML files hold a single array document;
// JSONL files hold one record per line. It returns the file size.
func WriteFile[T any](path string, format Format, records []T, opts ...WriterOption) (int64, error) {
	if records == nil {
		records = []T{}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create directory for %s: %w", path, err)
	}

	f, err := os.Create(path) //#nosec G304 -- CLI tool writes to a user-specified directory
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w, err := NewWriter(f, format, opts...)
	if err != nil {
		return 0, err
	}

	if format == FormatJSONL {
		for _, r := range records {
			if err := w.Write(r); err != nil {
				return 0, fmt.Errorf("encode %s: %w", path, err)
			}
		}
	} else if err := w.Write(records); err != nil {
		return 0, fmt.Errorf("encode %s: %w", path, err)
	}

	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
