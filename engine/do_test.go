package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeqValidateFirst(t *testing.T) {
	t.Parallel()

	calls := ""
	step := func(name string, verr, derr error) Doer {
		return Func{
			Name: name,
			V: func() error {
				calls += "v" + name + " "
				return verr
			},
			F: func() error {
				calls += "d" + name + " "
				return derr
			},
		}
	}
	e2 := fmt.Errorf("two")
	seq := NewSeq("tx").Append(step("1", nil, nil)).Append(step("2", e2, nil)).Append(step("3", fmt.Errorf("three"), nil))
	assert.Equal(t, "tx(1,2,3)", seq.String())
	assert.Equal(t, e2, seq.Validate())
	assert.Equal(t, "v1 v2 ", calls)

	calls = ""
	seq = NewSeq("tx").Append(step("1", nil, nil)).Append(step("2", nil, e2)).Append(step("3", nil, nil))
	assert.NoError(t, seq.Validate())
	name, err := seq.Do()
	assert.Equal(t, "2", name)
	assert.Equal(t, e2, err)
	assert.Equal(t, "v1 v2 v3 d1 d2 ", calls)
}

func TestFuncNil(t *testing.T) {
	t.Parallel()

	f := Func{Name: "noop"}
	assert.NoError(t, f.Validate())
	assert.NoError(t, f.Do())

	e := fmt.Errorf("broken")
	seq := NewSeq("fail").Append(Fail{E: e})
	assert.Equal(t, e, seq.Validate())
	_, err := seq.Do()
	assert.Equal(t, e, err)
}
