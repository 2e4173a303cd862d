// Package validation reconciles arbitrary engine output against an
// authoritative, ordered catalog.
//
// Keys are matched case-insensitively and rewritten to their canonical
// spelling. Keys the catalog does not know are dropped, and catalog
// entries the input lacks are filled with a default, so a successful
// result always has exactly one entry per descriptor. Every adjustment is
// reported as a Diff; diffs are informational and never an error.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ssyssy/ottertune/core/catalog"
	"github.com/ssyssy/ottertune/pkg/errors"
)

// DiffKind classifies a reconciliation adjustment.
type DiffKind string

const (
	// MiscapitalizedKey is an input key that matched a canonical name only
	// after case folding.
	MiscapitalizedKey DiffKind = "miscapitalized_key"
	// ExtraKey is an input key with no catalog entry. It is dropped.
	ExtraKey DiffKind = "extra_key"
	// MissingKey is a catalog entry absent from the input. It is filled
	// with a default.
	MissingKey DiffKind = "missing_key"
)

// Diff records one adjustment made while reconciling.
type Diff struct {
	Kind          DiffKind `json:"kind" yaml:"kind"`
	CanonicalName string   `json:"canonical_name,omitempty" yaml:"canonical_name,omitempty"` // empty for ExtraKey
	GivenName     string   `json:"given_name,omitempty" yaml:"given_name,omitempty"`         // empty for MissingKey
	Value         any      `json:"value,omitempty" yaml:"value,omitempty"`                   // the input value, nil for MissingKey
}

func (d Diff) String() string {
	switch d.Kind {
	case MiscapitalizedKey:
		return fmt.Sprintf("%s(%s, %s)", d.Kind, d.CanonicalName, d.GivenName)
	case ExtraKey:
		return fmt.Sprintf("%s(%s)", d.Kind, d.GivenName)
	default:
		return fmt.Sprintf("%s(%s)", d.Kind, d.CanonicalName)
	}
}

// Option configures a reconciliation call.
type Option func(*options)

type options struct {
	defaultValue *string
	strict       bool
}

// WithDefault fills missing keys with v instead of each descriptor's own
// default. It applies to ExtractValidKeys; Reconcile takes an explicit
// fill function.
func WithDefault(v string) Option {
	return func(o *options) {
		o.defaultValue = &v
	}
}

// WithStrictCollisions makes two input keys that fold to the same
// canonical name a ConsistencyAssertion error. Without it the exact-case
// key wins, otherwise the lexicographically smallest spelling.
func WithStrictCollisions() Option {
	return func(o *options) {
		o.strict = true
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ExtractValidKeys reconciles a flat string mapping against descriptors.
func ExtractValidKeys[D catalog.Descriptor](input map[string]string, descriptors []D, opts ...Option) (map[string]string, []Diff, error) {
	o := newOptions(opts)
	fill := func(d D) string {
		if o.defaultValue != nil {
			return *o.defaultValue
		}
		return d.DefaultValue()
	}
	return reconcile("ExtractValidKeys", input, descriptors, fill, o)
}

// Reconcile is the generic form of ExtractValidKeys for non-string
// values, such as the multi-valued metrics of scoped engines.
func Reconcile[V any, D catalog.Descriptor](input map[string]V, descriptors []D, fill func(D) V, opts ...Option) (map[string]V, []Diff, error) {
	return reconcile("Reconcile", input, descriptors, fill, newOptions(opts))
}

func reconcile[V any, D catalog.Descriptor](op string, input map[string]V, descriptors []D, fill func(D) V, o options) (map[string]V, []Diff, error) {
	canonical := make(map[string]string, len(descriptors))
	for _, d := range descriptors {
		name := d.DescriptorName()
		folded := strings.ToLower(name)
		if prev, dup := canonical[folded]; dup {
			return nil, nil, errors.NewConsistencyErrorf(op, "catalog names %q and %q collide", prev, name)
		}
		canonical[folded] = name
	}

	keys := make([]string, 0, len(input))
	for k := range input {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var diffs []Diff
	chosen := make(map[string]string, len(descriptors))
	for _, key := range keys {
		name, ok := canonical[strings.ToLower(key)]
		if !ok {
			diffs = append(diffs, Diff{Kind: ExtraKey, GivenName: key, Value: input[key]})
			continue
		}
		if key != name {
			diffs = append(diffs, Diff{Kind: MiscapitalizedKey, CanonicalName: name, GivenName: key, Value: input[key]})
		}
		prev, seen := chosen[name]
		switch {
		case !seen:
			chosen[name] = key
		case o.strict:
			return nil, nil, errors.NewConsistencyErrorf(op, "input keys %q and %q both name %q", prev, key, name)
		case key == name:
			chosen[name] = key
		}
	}

	out := make(map[string]V, len(descriptors))
	for name, key := range chosen {
		out[name] = input[key]
	}
	for _, d := range descriptors {
		name := d.DescriptorName()
		if _, ok := chosen[name]; ok {
			continue
		}
		diffs = append(diffs, Diff{Kind: MissingKey, CanonicalName: name})
		out[name] = fill(d)
	}

	if len(out) != len(descriptors) {
		return nil, nil, errors.NewConsistencyErrorf(op, "expected %d keys, got %d", len(descriptors), len(out))
	}
	return out, diffs, nil
}

// Count returns how many diffs of the given kind are present.
func Count(diffs []Diff, kind DiffKind) int {
	n := 0
	for _, d := range diffs {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Report forwards diffs to the process warning channel, tagged with the
// source they came from ("config", "metrics").
func Report(source string, diffs []Diff) {
	for _, d := range diffs {
		errors.Warn(errors.NewDiffWarning(source, string(d.Kind), d.CanonicalName, d.GivenName, d.Value))
	}
}
