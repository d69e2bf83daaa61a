package sqlite

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/decors/pkg/types"
)

// Export writes every decor to path as JSON Lines, one record per line in id
// order. The file is replaced atomically. Images are base64-encoded.
func (b *Backend) Export(ctx context.Context, path string) (int, error) {
	t, err := b.acquire()
	if err != nil {
		return 0, err
	}
	defer b.mu.RUnlock()

	cur, err := t.query(ctx, types.Selection{}, types.QueryOptions{})
	if err != nil {
		return 0, err
	}
	defer cur.Close()

	var records []json.RawMessage
	for d, err := range cur.All() {
		if err != nil {
			return 0, err
		}
		data, err := json.Marshal(d)
		if err != nil {
			return 0, fmt.Errorf("marshaling decor %d: %w", d.ID, err)
		}
		records = append(records, data)
	}

	if err := writeJSONL(path, records); err != nil {
		return 0, err
	}
	b.logger.Info("decors exported", "path", path, "count", len(records))
	return len(records), nil
}

// ReadExport reads decors written by Export. Blank and malformed lines are
// skipped.
func ReadExport(path string) ([]*types.Decor, error) {
	records, err := readJSONL(path)
	if err != nil {
		return nil, err
	}
	decors := make([]*types.Decor, 0, len(records))
	for _, rec := range records {
		var d types.Decor
		if err := json.Unmarshal(rec, &d); err != nil {
			continue
		}
		decors = append(decors, &d)
	}
	return decors, nil
}

// readJSONL reads a JSONL file and returns each non-empty, parseable line as
// a json.RawMessage. Malformed lines are skipped.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	// Base64 images make for long lines.
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// writeJSONL atomically writes records to a JSONL file using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing record: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
