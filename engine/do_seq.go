package engine

import (
	"strings"
)

// Sequence executor.
// Validate checks every step before anything is done, first error wins.
// Do stops at first error, so only the first step may fail for real.
// Build with NewSeq().Append()
type Seq struct {
	name  string
	_b    [4]Doer
	items []Doer
}

func NewSeq(name string) *Seq {
	self := &Seq{name: name}
	self.items = self._b[:0]
	return self
}

func (self *Seq) Append(d Doer) *Seq {
	self.items = append(self.items, d)
	return self
}

func (self *Seq) Validate() error {
	for _, d := range self.items {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Do returns failed step name with error.
func (self *Seq) Do() (string, error) {
	for _, d := range self.items {
		if err := d.Do(); err != nil {
			return d.String(), err
		}
	}
	return "", nil
}

func (self *Seq) String() string {
	names := make([]string, len(self.items))
	for i, d := range self.items {
		names[i] = d.String()
	}
	return self.name + "(" + strings.Join(names, ",") + ")"
}
