package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
)

type ErrBadCategory struct {
	Category FlowCategory
}

func (e *ErrBadCategory) Error() string {
	return fmt.Sprintf("unknown flow category '%s'", e.Category)
}
