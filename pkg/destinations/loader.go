package destinations

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
)

// Load reads a destination file and prepares an index from it.
func Load(path string) (*Index, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	var records []Record
	switch format {
	case FormatJSON:
		records, err = ReadJSONFile(path)
	case FormatBinary:
		records, err = ReadBinaryFile(path)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load destinations from %s: %w", path, err)
	}

	idx := New(records)
	log.Debugf("Loaded %d destinations from %s (%s), dropped %d", idx.Len(), path, format, idx.Dropped())
	return idx, nil
}

// ReadJSONFile reads a JSON destination list.
func ReadJSONFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseJSON(data)
}

// ParseJSON decodes a JSON array of destination objects.
// Each entry is decoded on its own so a single malformed entry is skipped
// instead of failing the whole list.
func ParseJSON(data []byte) ([]Record, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("expected a JSON array of destinations: %w", err)
	}

	records := make([]Record, 0, len(raw))
	for i, entry := range raw {
		fields := map[string]any{}
		dec := json.NewDecoder(bytes.NewReader(entry))
		dec.UseNumber()
		if err := dec.Decode(&fields); err != nil {
			log.Debugf("Skipping destination entry %d: %v", i, err)
			continue
		}
		r, ok := recordFromFields(fields)
		if !ok {
			log.Debugf("Skipping destination entry %d: missing id or term", i)
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

// recordFromFields maps loosely typed fields onto a Record.
// ids may be strings or numbers, terms must be strings.
func recordFromFields(fields map[string]any) (Record, bool) {
	var r Record

	switch id := fields["id"].(type) {
	case string:
		r.ID = id
	case json.Number:
		r.ID = id.String()
	case int64:
		r.ID = strconv.FormatInt(id, 10)
	case float64:
		r.ID = strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return r, false
	}

	term, ok := fields["term"].(string)
	if !ok {
		return r, false
	}
	r.Term = term

	if region, ok := fields["region"].(string); ok {
		r.Region = &region
	}
	return r, valid(r)
}
