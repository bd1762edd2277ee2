package analysis

import (
	"bytes"
	"encoding/json"
)

// Result is the outcome of one per-index analysis unit. TileURL is nil when
// the unit failed.
type Result struct {
	Index   string  `json:"index"`
	TileURL *string `json:"tileUrl"`
	Value   Value   `json:"value"`
}

// Batch holds the results of an all-index analysis, one per registered
// index, in registry order.
type Batch struct {
	results []Result
}

// Results returns the per-index results in registry order.
func (b *Batch) Results() []Result {
	return b.results
}

// Get returns the result for the given index id.
func (b *Batch) Get(id string) (Result, bool) {
	for _, r := range b.results {
		if r.Index == id {
			return r, true
		}
	}
	return Result{}, false
}

func (b *Batch) Len() int {
	return len(b.results)
}

// NumericValues returns the successfully reduced values keyed by index id.
// N/A and Error members are omitted.
func (b *Batch) NumericValues() map[string]float64 {
	values := make(map[string]float64, len(b.results))
	for _, r := range b.results {
		if num, ok := r.Value.Number(); ok {
			values[r.Index] = num
		}
	}
	return values
}

// FailedIndexes returns the ids of units that ended in the Error sentinel.
func (b *Batch) FailedIndexes() []string {
	var failed []string
	for _, r := range b.results {
		if r.Value.IsError() {
			failed = append(failed, r.Index)
		}
	}
	return failed
}

// MarshalJSON emits an object keyed by index id with keys in registry order.
// A plain map would serialize alphabetically; display order matters to
// clients, so the object is built by hand.
func (b *Batch) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range b.results {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(r.Index)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
