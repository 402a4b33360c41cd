// Package agreement parses the counter-name vector and model reference out
// of the signed agreement document. The two JSON pointers it resolves are
// fixed and known in advance, so lookup is a narrow path walker rather than
// a general RFC 6901 implementation.
package agreement

import (
	"encoding/json"
	"os"

	"github.com/golem-exeunit/ai-runtime-supervisor/internal/apperr"
)

const (
	counterVectorPointer = "/offer/properties/golem/com/usage/vector"
	taskPackagePointer   = "/demand/properties/golem/srv/comp/task_package"
)

// Descriptor is the immutable, once-constructed agreement view the rest of
// the supervisor depends on: an ordered counter-name vector and an opaque
// model/package reference consumed by the transfer adapter.
type Descriptor struct {
	Counters []string
	Model    string
}

// Load reads and parses the agreement document at path.
func Load(path string) (*Descriptor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.BadConfig, err, "read agreement file %q", path)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, apperr.Wrap(apperr.BadConfig, err, "parse agreement json")
	}

	countersValue, ok := lookup(doc, counterVectorPointer)
	if !ok {
		return nil, apperr.New(apperr.BadConfig, "invalid agreement: missing usage counters at %s", counterVectorPointer)
	}
	counters, err := toStringSlice(countersValue)
	if err != nil {
		return nil, apperr.Wrap(apperr.BadConfig, err, "usage counter vector at %s", counterVectorPointer)
	}

	modelValue, ok := lookup(doc, taskPackagePointer)
	if !ok {
		return nil, apperr.New(apperr.BadConfig, "invalid agreement: missing task package at %s", taskPackagePointer)
	}
	model, ok := modelValue.(string)
	if !ok {
		return nil, apperr.New(apperr.BadConfig, "task package at %s is not a string", taskPackagePointer)
	}

	return &Descriptor{Counters: counters, Model: model}, nil
}

// ResolveCounter returns the index of name in the agreement's counter
// vector, or -1 if the agreement doesn't carry that counter.
func (d *Descriptor) ResolveCounter(name string) int {
	for i, n := range d.Counters {
		if n == name {
			return i
		}
	}
	return -1
}

// CleanUsageVector returns a freshly zeroed usage vector the same length as
// the agreement's counter list, in agreement order.
func (d *Descriptor) CleanUsageVector() []float64 {
	return make([]float64, len(d.Counters))
}

// lookup walks a fixed "/a/b/c" pointer over a decoded JSON document.
// Only the two pointers this package cares about are ever passed in, so
// this is intentionally not a general decoder for arbitrary pointer syntax
// (escaped "~0"/"~1" tokens, array indices, etc).
func lookup(doc any, pointer string) (any, bool) {
	segments := splitPointer(pointer)
	cur := doc
	for _, seg := range segments {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func splitPointer(pointer string) []string {
	if len(pointer) == 0 || pointer[0] != '/' {
		return nil
	}
	var segments []string
	start := 1
	for i := 1; i <= len(pointer); i++ {
		if i == len(pointer) || pointer[i] == '/' {
			segments = append(segments, pointer[start:i])
			start = i + 1
		}
	}
	return segments
}

func toStringSlice(v any) ([]string, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, apperr.New(apperr.BadConfig, "expected an array")
	}
	out := make([]string, len(arr))
	for i, el := range arr {
		s, ok := el.(string)
		if !ok {
			return nil, apperr.New(apperr.BadConfig, "expected array of strings, element %d is %T", i, el)
		}
		out[i] = s
	}
	return out, nil
}
