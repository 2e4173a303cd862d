// Package conversion converts between magnitude-suffixed strings such as
// "8kB" or "30min" and plain integers in a base unit.
//
// A System is an ordered list of (factor, suffix) units. Parsing picks the
// first unit, in declared order, whose suffix ends the value, so the order
// is part of the system's meaning: a suffix must never be shadowed by an
// earlier suffix it ends with ("ms" has to be checked before "s").
// NewSystem rejects systems that violate this.
package conversion

import (
	"math"
	"strconv"
	"strings"

	"github.com/ssyssy/ottertune/pkg/errors"
)

// ErrSuffixNotFound is returned by ParseMagnitude when no unit of the
// system matches the value. Callers decide whether that is fatal.
var ErrSuffixNotFound = errors.New("no matching unit suffix")

// Unit is one (factor, suffix) pair of a System.
type Unit struct {
	Factor int64
	Suffix string
}

// System is an ordered set of units. The zero value has no units and
// matches nothing.
type System struct {
	name  string
	units []Unit
}

// NewSystem validates and builds a System. Factors must be positive,
// suffixes non-empty, and no later suffix may end with an earlier one.
func NewSystem(name string, units ...Unit) (System, error) {
	if len(units) == 0 {
		return System{}, errors.NewValueError("NewSystem", name+": no units")
	}
	for i, u := range units {
		if u.Factor <= 0 {
			return System{}, errors.NewValidationError(name, "unit factor must be positive", u.Factor)
		}
		if u.Suffix == "" {
			return System{}, errors.NewValidationError(name, "unit suffix must not be empty", i)
		}
		for _, earlier := range units[:i] {
			if strings.HasSuffix(u.Suffix, earlier.Suffix) {
				return System{}, errors.NewValidationError(name,
					"suffix "+strconv.Quote(u.Suffix)+" is shadowed by earlier suffix "+strconv.Quote(earlier.Suffix),
					u.Suffix)
			}
		}
	}
	return System{name: name, units: append([]Unit(nil), units...)}, nil
}

// MustSystem is like NewSystem but panics on an invalid system. It is
// meant for package-level tables.
func MustSystem(name string, units ...Unit) System {
	s, err := NewSystem(name, units...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the system's name.
func (s System) Name() string { return s.name }

// Units returns a copy of the units in declared order.
func (s System) Units() []Unit {
	return append([]Unit(nil), s.units...)
}

// ParseMagnitude converts value to an integer amount of the base unit.
// An empty prefix means an amount of one ("kB" == 1024). It returns
// ErrSuffixNotFound when no unit matches, and a wrapped parse or range
// error when the prefix is not an integer or the product overflows.
func ParseMagnitude(value string, sys System) (int64, error) {
	for _, u := range sys.units {
		if !strings.HasSuffix(value, u.Suffix) {
			continue
		}
		prefix := value[:len(value)-len(u.Suffix)]
		amount := int64(1)
		if prefix != "" {
			n, err := strconv.ParseInt(prefix, 10, 64)
			if err != nil {
				return 0, errors.Wrapf(err, "parse amount of %q", value)
			}
			amount = n
		}
		if amount > math.MaxInt64/u.Factor || amount < math.MinInt64/u.Factor {
			return 0, errors.NewValueError("ParseMagnitude", strconv.Quote(value)+" overflows int64")
		}
		return amount * u.Factor, nil
	}
	return 0, errors.Wrapf(ErrSuffixNotFound, "%q in %s", value, sys.name)
}

// FormatMagnitude renders value with the first unit whose factor does not
// exceed it, truncating toward zero. Values smaller than every factor use
// the last unit.
func FormatMagnitude(value int64, sys System) string {
	if len(sys.units) == 0 {
		return strconv.FormatInt(value, 10)
	}
	u := sys.units[len(sys.units)-1]
	for _, candidate := range sys.units {
		if value >= candidate.Factor {
			u = candidate
			break
		}
	}
	return strconv.FormatInt(value/u.Factor, 10) + u.Suffix
}
