package walker

import (
	"fmt"
	"reflect"
)

type ArgumentError struct {
	Param string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %q", e.Param)
}

// GraphCycleError aborts a walk. Type is the policy that detected the cycle.
type GraphCycleError struct {
	Type  CycleType
	Depth int
}

func (e *GraphCycleError) Error() string {
	if e.Type == MaxDepth {
		return fmt.Sprintf("graph cycle detected: maximum depth of %d exceeded", e.Depth)
	}

	return "graph cycle detected: value references one of its ancestors"
}

type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("cannot walk value of type %s", e.Type)
}
