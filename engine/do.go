package engine

import (
	"fmt"
)

// Doer is one settlement step.
// Validate must not mutate anything, Do commits.
type Doer interface {
	Validate() error
	Do() error
	String() string // for logs
}

type ValidateFunc func() error

func useValidator(v ValidateFunc) error {
	if v == nil {
		return nil
	}
	return v()
}

// Func is step from closures, nil V or F means nothing to check or do.
type Func struct {
	Name string
	F    func() error
	V    ValidateFunc
}

func (self Func) Validate() error { return useValidator(self.V) }
func (self Func) Do() error {
	if self.F == nil {
		return nil
	}
	return self.F()
}
func (self Func) String() string { return self.Name }

type Fail struct{ E error }

func (self Fail) Validate() error { return self.E }
func (self Fail) Do() error       { return self.E }
func (self Fail) String() string  { return fmt.Sprintf("fail(%v)", self.E) }
