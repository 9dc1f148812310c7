package currency

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestNominalGroup(t *testing.T) *NominalGroup {
	ng := NewNominalGroup(1000, 500, 100)
	if err := ng.Add(101, 1); err == nil {
		t.Fatal("expected invalid nominal")
	}
	if err := ng.Add(1000, 2); err != nil {
		t.Fatal(err)
	}
	if err := ng.Add(500, 8); err != nil {
		t.Fatal(err)
	}
	if err := ng.Add(100, 3); err != nil {
		t.Fatal(err)
	}
	return ng
}

func testCheckNominalGroup(t *testing.T, strategy ExpendStrategy) {
	ng := createTestNominalGroup(t)

	total1 := ng.Total()
	if err := ng.Copy().Withdraw(nil, 1700, strategy); err != nil {
		t.Fatal(err)
	}
	total2 := ng.Total()
	if err := ng.Withdraw(nil, 1700, strategy); err != nil {
		t.Fatal(err)
	}
	total3 := ng.Total()
	if err := ng.Copy().Withdraw(nil, 10000, strategy); err == nil {
		t.Fatal("expected withdraw error")
	}
	total4 := ng.Total()
	if err := ng.Withdraw(nil, 10000, strategy); err == nil {
		t.Fatal("expected withdraw error")
	}
	total5 := ng.Total()
	const exptotal1 = 6300
	const exptotal2 = 4600
	if total1 != exptotal1 || total2 != exptotal1 {
		t.Fatalf("expected total1 %d == total2 %d == %d", total1, total2, exptotal1)
	}
	if total3 != exptotal2 || total4 != exptotal2 {
		t.Fatalf("expected total3 %d == total4 %d == %d", total3, total4, exptotal2)
	}
	// failed withdraw must not touch group
	if total5 != exptotal2 {
		t.Fatalf("expected total5 %d == %d", total5, exptotal2)
	}
}

func TestNominalGroup(t *testing.T) {
	t.Parallel()
	t.Run("ExpendLeastCount", func(t *testing.T) { testCheckNominalGroup(t, NewExpendLeastCount()) })
	t.Run("ExpendMostAvailable", func(t *testing.T) { testCheckNominalGroup(t, NewExpendMostAvailable()) })
}

func TestWithdrawGreedy(t *testing.T) {
	t.Parallel()

	ng := NewNominalGroup(1000, 500, 100)
	require.NoError(t, ng.Set(1000, 3))
	require.NoError(t, ng.Set(500, 2))
	require.NoError(t, ng.Set(100, 0))

	out := NewNominalGroup()
	err := ng.Withdraw(out, 300, NewExpendLeastCount())
	require.Error(t, err)
	short, ok := err.(*ErrNominalShort)
	require.True(t, ok, "error type %T", err)
	assert.Equal(t, Amount(300), short.Remainder)
	assert.Equal(t, Amount(0), out.Total())
	assert.Equal(t, Amount(4000), ng.Total())

	require.NoError(t, ng.Withdraw(out, 2500, NewExpendLeastCount()))
	assert.Equal(t, map[Nominal]uint{1000: 2, 500: 1}, out.Map())
	assert.Equal(t, "1000:1,500:1,total:1500", ng.String())
}

// Any multiple of 100 up to till value is paid exactly and never exceeds counts.
func TestWithdrawGreedyProperty(t *testing.T) {
	t.Parallel()

	f := func(c1000, c500, c100 uint8, want uint16) bool {
		ng := NewNominalGroup(1000, 500, 100)
		_ = ng.Set(1000, uint(c1000%20))
		_ = ng.Set(500, uint(c500%20))
		_ = ng.Set(100, uint(c100%20))
		before := ng.Copy()
		amount := Amount(want%300) * 100

		out := NewNominalGroup()
		err := ng.Withdraw(out, amount, NewExpendLeastCount())
		if err != nil {
			// greedy shortfall leaves group untouched
			return assert.True(t, ng.Equal(before)) && assert.Equal(t, Amount(0), out.Total())
		}
		if !assert.Equal(t, amount, out.Total()) {
			return false
		}
		for n, c := range out.Map() {
			have, _ := before.Get(n)
			if !assert.LessOrEqual(t, c, have, "nominal=%d", n) {
				return false
			}
		}
		return assert.Equal(t, before.Total()-amount, ng.Total())
	}
	require.NoError(t, quick.Check(f, &quick.Config{MaxCount: 5000}))
}

func TestNewExpendStrategy(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"", "least_count", "most_available"} {
		s, err := NewExpendStrategy(name)
		require.NoError(t, err, name)
		require.NotNil(t, s)
	}
	_, err := NewExpendStrategy("random")
	require.Error(t, err)
}

func TestExpendMostAvailableOrder(t *testing.T) {
	t.Parallel()

	ng := NewNominalGroup(1000, 500, 100)
	_ = ng.Set(1000, 1)
	_ = ng.Set(500, 1)
	_ = ng.Set(100, 30)
	out := NewNominalGroup()
	require.NoError(t, ng.Withdraw(out, 1000, NewExpendMostAvailable()))
	assert.Equal(t, map[Nominal]uint{100: 10}, out.Map())
}
