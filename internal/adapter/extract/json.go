package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// jsonTables reads an array of flat objects, the structured form statements are
// exported in. Keys become headers in sorted order so that the first date-like
// key is chosen deterministically.
func jsonTables(content []byte) ([]Table, error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()

	var objects []map[string]any
	if err := dec.Decode(&objects); err != nil {
		return nil, fmt.Errorf("decode json records: %w", err)
	}
	if len(objects) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{})
	var headers []string
	for _, obj := range objects {
		for k := range obj {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				headers = append(headers, k)
			}
		}
	}
	sort.Strings(headers)

	t := Table{Headers: headers, Rows: make([][]string, 0, len(objects))}
	for _, obj := range objects {
		row := make([]string, len(headers))
		for i, h := range headers {
			row[i] = jsonCell(obj[h])
		}
		t.Rows = append(t.Rows, row)
	}
	return []Table{t}, nil
}

func jsonCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
