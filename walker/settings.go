package walker

import "fmt"

type CycleType int

const (
	// Ignore replaces a value that re-enters its own ancestry with null.
	Ignore CycleType = iota
	// Reference fails the walk on re-entry.
	Reference
	// MaxDepth fails the walk when nesting goes past Settings.MaxDepth,
	// whether or not the data is actually cyclic.
	MaxDepth
)

func (c CycleType) String() string {
	switch c {
	case Ignore:
		return "ignore"
	case Reference:
		return "reference"
	case MaxDepth:
		return "max-depth"
	}

	return "<unknown>"
}

func ParseCycleType(s string) (CycleType, error) {
	switch s {
	case "ignore":
		return Ignore, nil
	case "reference":
		return Reference, nil
	case "max-depth":
		return MaxDepth, nil
	}

	return 0, fmt.Errorf("unknown cycle policy %q", s)
}

type Settings struct {
	GraphCycles CycleType
	MaxDepth    int
	Filters     []Filter
}

func DefaultSettings() *Settings {
	return &Settings{
		GraphCycles: Ignore,
		Filters:     []Filter{DateISO8601Filter{}},
	}
}
