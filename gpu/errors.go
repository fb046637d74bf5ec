package gpu

import "fmt"

// ContractError is the panic value for assets that break the invariants the
// builder relies on, such as a vertex accessor in an element buffer view or
// an index pointing past the end of its list.
type ContractError struct {
	Op     string
	Detail string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("gpu: %s: %s", e.Op, e.Detail)
}

func violate(op, format string, args ...any) {
	panic(&ContractError{Op: op, Detail: fmt.Sprintf(format, args...)})
}
