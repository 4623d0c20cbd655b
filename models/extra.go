package models

import (
	"encoding/json"
	"fmt"
)

func (r *SolutionResult) UnmarshalJSON(data []byte) error {
	type plain SolutionResult
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraFields(data, "solution", "error")
	if err != nil {
		return err
	}
	*r = SolutionResult(p)
	r.Extra = extra
	return nil
}

func (r SolutionResult) MarshalJSON() ([]byte, error) {
	type plain SolutionResult
	return mergeExtra(plain(r), r.Extra)
}

func (d *DocumentResult) UnmarshalJSON(data []byte) error {
	type plain DocumentResult
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraFields(data, "blob_name", "stored_embeddings")
	if err != nil {
		return err
	}
	*d = DocumentResult(p)
	d.Extra = extra
	return nil
}

func (d DocumentResult) MarshalJSON() ([]byte, error) {
	type plain DocumentResult
	return mergeExtra(plain(d), d.Extra)
}

// extraFields returns every top-level member of data not named in known.
func extraFields(data []byte, known ...string) (map[string]any, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(raw, k)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	extra := make(map[string]any, len(raw))
	for k, v := range raw {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return nil, fmt.Errorf("decode field %q: %w", k, err)
		}
		extra[k] = val
	}
	return extra, nil
}

// mergeExtra encodes v and adds the members of extra it does not already carry.
func mergeExtra(v any, extra map[string]any) ([]byte, error) {
	base, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return base, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, val := range extra {
		if _, exists := merged[k]; exists {
			continue
		}
		encoded, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("encode field %q: %w", k, err)
		}
		merged[k] = encoded
	}
	return json.Marshal(merged)
}
