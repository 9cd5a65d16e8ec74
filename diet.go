package sparkbytes

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Flag is one of the dietary options a user or an event can carry.
type Flag uint8

// The six dietary flags. None means "no restrictions" and can't be combined
// with any other flag.
const (
	None Flag = 1 << iota
	Vegetarian
	Vegan
	GlutenFree
	DairyFree
	NutFree
)

// Flags lists every flag in display order.
var Flags = []Flag{None, Vegetarian, Vegan, GlutenFree, DairyFree, NutFree}

var flagNames = map[Flag]string{
	None:       "none",
	Vegetarian: "vegetarian",
	Vegan:      "vegan",
	GlutenFree: "glutenFree",
	DairyFree:  "dairyFree",
	NutFree:    "nutFree",
}

func (f Flag) String() string {
	if name, ok := flagNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Flag(%d)", uint8(f))
}

// ParseFlag looks up a flag by its record name, eg "glutenFree".
func ParseFlag(name string) (Flag, error) {
	for f, n := range flagNames {
		if strings.EqualFold(n, name) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown dietary flag %q", name)
}

// ErrNoneExclusive is returned when None is combined with another flag.
var ErrNoneExclusive = fmt.Errorf("dietary flag %q can't be combined with other flags", "none")

const specificFlags = Vegetarian | Vegan | GlutenFree | DairyFree | NutFree

// Diet is a set of dietary flags. The zero value is the empty set. A Diet
// never holds None together with another flag.
type Diet struct {
	bits Flag
}

// NewDiet builds a Diet from flags. It returns ErrNoneExclusive if None is
// combined with any other flag.
func NewDiet(flags ...Flag) (Diet, error) {
	var bits Flag
	for _, f := range flags {
		if _, ok := flagNames[f]; !ok {
			return Diet{}, fmt.Errorf("unknown dietary flag %d", uint8(f))
		}
		bits |= f
	}
	if bits&None != 0 && bits&specificFlags != 0 {
		return Diet{}, ErrNoneExclusive
	}
	return Diet{bits: bits}, nil
}

// MustDiet is like NewDiet but panics on an invalid combination.
func MustDiet(flags ...Flag) Diet {
	d, err := NewDiet(flags...)
	if err != nil {
		panic(err)
	}
	return d
}

// Has reports whether f is set.
func (d Diet) Has(f Flag) bool {
	return d.bits&f != 0
}

// Empty reports whether no flag at all is set.
func (d Diet) Empty() bool {
	return d.bits == 0
}

// Restricted reports whether any flag other than None is set.
func (d Diet) Restricted() bool {
	return d.bits&specificFlags != 0
}

// Toggle applies a checkbox change the way the forms do: checking None
// clears every other flag, checking anything else clears None.
func (d Diet) Toggle(f Flag, on bool) Diet {
	if !on {
		return Diet{bits: d.bits &^ f}
	}
	if f == None {
		return Diet{bits: None}
	}
	return Diet{bits: (d.bits | f) &^ None}
}

// Set returns the flags in display order.
func (d Diet) Set() []Flag {
	var out []Flag
	for _, f := range Flags {
		if d.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// SharesAny reports whether d and other have a specific flag in common.
func (d Diet) SharesAny(other Diet) bool {
	return d.bits&other.bits&specificFlags != 0
}

// Covers reports whether every specific flag in want is also set in d.
func (d Diet) Covers(want Diet) bool {
	w := want.bits & specificFlags
	return d.bits&w == w
}

func (d Diet) String() string {
	var names []string
	for _, f := range d.Set() {
		names = append(names, f.String())
	}
	return strings.Join(names, ",")
}

// ParseDiet parses a comma-separated list of flag names, as used in query
// strings.
func ParseDiet(s string) (Diet, error) {
	var flags []Flag
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		f, err := ParseFlag(name)
		if err != nil {
			return Diet{}, err
		}
		flags = append(flags, f)
	}
	return NewDiet(flags...)
}

// MarshalJSON encodes the set as the six-boolean object stored in records.
func (d Diet) MarshalJSON() ([]byte, error) {
	m := struct {
		None       bool `json:"none"`
		Vegetarian bool `json:"vegetarian"`
		Vegan      bool `json:"vegan"`
		GlutenFree bool `json:"glutenFree"`
		DairyFree  bool `json:"dairyFree"`
		NutFree    bool `json:"nutFree"`
	}{
		None:       d.Has(None),
		Vegetarian: d.Has(Vegetarian),
		Vegan:      d.Has(Vegan),
		GlutenFree: d.Has(GlutenFree),
		DairyFree:  d.Has(DairyFree),
		NutFree:    d.Has(NutFree),
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes the six-boolean object. Missing flags are false. If
// a stored object carries None along with specific flags the specific flags
// win.
func (d *Diet) UnmarshalJSON(data []byte) error {
	var m map[string]bool
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var bits Flag
	for name, on := range m {
		if !on {
			continue
		}
		f, err := ParseFlag(name)
		if err != nil {
			continue // unknown keys are ignored
		}
		bits |= f
	}
	if bits&specificFlags != 0 {
		bits &^= None
	}
	d.bits = bits
	return nil
}
