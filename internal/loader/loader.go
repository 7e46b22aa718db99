// Package loader reads scraper output dumps into raw records. Two layouts
// are accepted: a single JSON array, or JSON Lines with one record per line.
package loader

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/model"
)

// Raw text snapshots can be large; size the line scanner accordingly.
const maxLineBytes = 4 << 20

// LoadFile reads one dump file into records.
func LoadFile(path string) ([]model.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: read %s", path)
	}
	records, err := Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: parse %s", path)
	}
	return records, nil
}

// Parse decodes a dump: a JSON array if the first non-space byte is '[',
// JSON Lines otherwise.
func Parse(data []byte) ([]model.RawRecord, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var records []model.RawRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, eris.Wrap(err, "decode json array")
		}
		return records, nil
	}

	var records []model.RawRecord
	sc := bufio.NewScanner(bytes.NewReader(trimmed))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	line := 0
	for sc.Scan() {
		line++
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 {
			continue
		}
		var rec model.RawRecord
		if err := json.Unmarshal(text, &rec); err != nil {
			return nil, eris.Wrapf(err, "decode jsonl line %d", line)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrap(err, "scan jsonl")
	}
	return records, nil
}

// LoadFiles reads several dump files concurrently and returns their records
// concatenated in argument order.
func LoadFiles(ctx context.Context, paths []string) ([]model.RawRecord, error) {
	results := make([][]model.RawRecord, len(paths))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			records, err := LoadFile(path)
			if err != nil {
				return err
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []model.RawRecord
	for _, records := range results {
		all = append(all, records...)
	}
	return all, nil
}
