package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/vendsim/bank"
	"github.com/temoto/vendsim/currency"
	"github.com/temoto/vendsim/engine/inventory"
	"github.com/temoto/vendsim/log2"
	"github.com/temoto/vendsim/money"
)

type fixture struct {
	e     *Engine
	inv   *inventory.Inventory
	till  *money.Till
	bank  *bank.Bank
	krw   *bank.Card
	usd   *bank.Card
	empty *bank.Card
}

func krw(a currency.Amount) currency.Money { return currency.New(a, currency.KRW) }

// snapshot of all shared state for atomicity checks
type snapshot struct {
	items    []inventory.Item
	till     map[currency.Nominal]uint
	balances []currency.Money
	merchant currency.Money
}

func (f *fixture) snapshot() snapshot {
	s := snapshot{
		items:    f.inv.List(),
		till:     f.till.Counts(),
		merchant: f.e.Merchant().Balance(),
	}
	for _, c := range f.bank.Cards() {
		s.balances = append(s.balances, c.Account().Balance())
	}
	return s
}

func newFixture(t testing.TB, tillCounts map[currency.Nominal]uint, cashMin uint) *fixture {
	log := log2.NewTest(t, log2.LDebug)
	f := &fixture{}

	f.inv = inventory.New(log, currency.KRW, 0, 0)
	require.NoError(t, f.inv.AddItem("kimbap", 3, krw(1300)))
	require.NoError(t, f.inv.AddItem("cola", 10, krw(1100)))
	require.NoError(t, f.inv.AddItem("cake", 5, krw(7000)))
	require.NoError(t, f.inv.AddItem("gum", 0, krw(500)))

	var err error
	f.till, err = money.New(log, currency.KRW, []money.Denomination{
		{Nominal: 10000, Accept: true},
		{Nominal: 5000, Accept: true},
		{Nominal: 1000, Capacity: 100, Accept: true, Change: true},
		{Nominal: 500, Capacity: 200, Accept: true, Change: true},
		{Nominal: 100, Capacity: 1000, Accept: true, Change: true},
	}, nil, cashMin)
	require.NoError(t, err)
	for n, c := range tillCounts {
		require.NoError(t, f.till.Credit(money.Tender{n: c}))
	}

	rates := currency.NewRateTable(currency.USD, currency.RoundHalfAwayFromZero)
	require.NoError(t, rates.Set(currency.KRW, decimal.NewFromInt(1300)))
	require.NoError(t, rates.Set(currency.CNY, decimal.RequireFromString("7.2")))
	f.bank = bank.New(log, rates, rand.New(rand.NewSource(1)))
	f.krw, err = f.bank.Issue("Kim", currency.KRW)
	require.NoError(t, err)
	require.NoError(t, f.krw.Account().Deposit(krw(5000)))
	f.usd, err = f.bank.Issue("Smith", currency.USD)
	require.NoError(t, err)
	require.NoError(t, f.usd.Account().Deposit(currency.New(10000, currency.USD)))
	f.empty, err = f.bank.Issue("Wang", currency.CNY)
	require.NoError(t, err)

	merchant, err := f.bank.OpenAccount("machine", currency.KRW)
	require.NoError(t, err)
	f.e, err = New(log, f.inv, f.till, f.bank, merchant)
	require.NoError(t, err)
	f.e.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func fullTill() map[currency.Nominal]uint {
	return map[currency.Nominal]uint{1000: 50, 500: 50, 100: 50}
}

func TestNewCurrencyMismatch(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, 0)
	merchant, err := f.bank.OpenAccount("foreign", currency.USD)
	require.NoError(t, err)
	_, err = New(nil, f.inv, f.till, f.bank, merchant)
	require.Error(t, err)
	assert.IsType(t, &currency.ErrCurrencyMismatch{}, errors.Cause(err))
}

func TestAddToCart(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fullTill(), 10)
	item, err := f.e.AddToCart("0", 2)
	require.NoError(t, err)
	assert.Equal(t, "kimbap", item.Name)
	_, err = f.e.AddToCart("cola", 1)
	require.NoError(t, err)

	// running total 2+2 > stock 3
	_, err = f.e.AddToCart("kimbap", 2)
	assert.Equal(t, &inventory.ErrInsufficientStock{Item: "kimbap", Available: 3, Requested: 4}, err)
	_, err = f.e.AddToCart("gum", 1)
	assert.Equal(t, &inventory.ErrOutOfStock{Item: "gum"}, err)
	_, err = f.e.AddToCart("nope", 1)
	assert.Equal(t, &inventory.ErrUnknownItem{Selector: "nope"}, err)
	_, err = f.e.AddToCart("cola", 0)
	assert.Equal(t, &inventory.ErrInvalidQuantity{Quantity: 0}, err)

	_, err = f.e.AddToCart("kimbap", 1)
	require.NoError(t, err)
	assert.Equal(t, []inventory.Line{{Item: "kimbap", Quantity: 3}, {Item: "cola", Quantity: 1}}, f.e.Cart())
	assert.Equal(t, StateBuildingCart, f.e.State())
}

// Scenario 3: 5 units of item with stock 3 fail at cart build, before payment.
func TestScenarioInsufficientStock(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fullTill(), 10)
	before := f.snapshot()
	_, err := f.e.AddToCart("kimbap", 5)
	assert.Equal(t, &inventory.ErrInsufficientStock{Item: "kimbap", Available: 3, Requested: 5}, err)
	assert.Empty(t, f.e.Cart())
	assert.Equal(t, StateBuildingCart, f.e.State())
	assert.Equal(t, before, f.snapshot())
}

// Scenario 4: empty cart settle is no-op without error.
func TestScenarioEmptyCart(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fullTill(), 10)
	before := f.snapshot()

	q, err := f.e.Done()
	require.NoError(t, err)
	assert.True(t, q.Empty)
	assert.Equal(t, StateBuildingCart, f.e.State())

	r, err := f.e.SettleCash(money.Tender{1000: 1})
	assert.NoError(t, err)
	assert.Nil(t, r)
	r, err = f.e.SettleCard("0")
	assert.NoError(t, err)
	assert.Nil(t, r)
	assert.Equal(t, StateBuildingCart, f.e.State())
	assert.Equal(t, StateInvalid, f.e.Last())
	assert.Equal(t, before, f.snapshot())
	assert.Empty(t, f.e.Journal())
}

func TestDoneQuote(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fullTill(), 10)
	_, err := f.e.AddToCart("kimbap", 2)
	require.NoError(t, err)
	_, err = f.e.AddToCart("cola", 1)
	require.NoError(t, err)
	q, err := f.e.Done()
	require.NoError(t, err)
	assert.False(t, q.Empty)
	assert.True(t, q.CashAvailable)
	assert.Equal(t, krw(3700), q.Total)
	assert.Equal(t, []ReceiptLine{
		{Item: "kimbap", UnitPrice: krw(1300), Quantity: 2, Subtotal: krw(2600)},
		{Item: "cola", UnitPrice: krw(1100), Quantity: 1, Subtotal: krw(1100)},
	}, q.Lines)
	assert.Equal(t, StateAwaitingPayment, f.e.State())

	f.e.Cancel()
	assert.Equal(t, StateBuildingCart, f.e.State())
	assert.Empty(t, f.e.Cart())
}

// Scenario 1: till {1000:2, 500:1}, total 2200, tender 2500, no 100s for change 300.
func TestScenarioChangeUnavailable(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[currency.Nominal]uint{1000: 2, 500: 1}, 0)
	require.NoError(t, f.inv.AddItem("snack", 5, krw(2200)))
	_, err := f.e.AddToCart("snack", 1)
	require.NoError(t, err)
	before := f.snapshot()

	r, err := f.e.SettleCash(money.Tender{1000: 2, 500: 1})
	assert.Nil(t, r)
	assert.Equal(t, &money.ErrChangeUnavailable{Change: krw(300), Remainder: krw(300)}, err)
	assert.Equal(t, before, f.snapshot())
	assert.Equal(t, StateAborted, f.e.Last())
	assert.Equal(t, StateBuildingCart, f.e.State())
	// cart kept for retry
	assert.Equal(t, []inventory.Line{{Item: "snack", Quantity: 1}}, f.e.Cart())
	assert.Empty(t, f.e.Journal())
}

func TestSettleCash(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fullTill(), 10)
	_, err := f.e.AddToCart("kimbap", 2)
	require.NoError(t, err)
	_, err = f.e.AddToCart("cola", 1)
	require.NoError(t, err)
	tillBefore := f.till.Total()

	tender := money.Tender{5000: 1}
	r, err := f.e.SettleCash(tender)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, PaymentCash, r.Kind)
	assert.Equal(t, uint32(1), r.Seq)
	assert.Equal(t, krw(3700), r.Total)
	assert.Equal(t, krw(5000), r.Tendered)
	assert.Equal(t, krw(1300), r.Change)
	assert.Equal(t, map[currency.Nominal]uint{1000: 1, 100: 3}, r.ChangeGiven)
	assert.Equal(t, 3, r.ItemCount())

	// conservation
	assert.Equal(t, money.Sum(tender)-r.Change.Amount, f.till.Total().Amount-tillBefore.Amount)
	assert.Equal(t, r.Tendered.Amount-r.Total.Amount, r.Change.Amount)

	items := f.inv.List()
	assert.Equal(t, 1, items[0].Stock)
	assert.Equal(t, 9, items[1].Stock)
	assert.Empty(t, f.e.Cart())
	assert.Equal(t, StateSettled, f.e.Last())
	assert.Equal(t, StateBuildingCart, f.e.State())
	assert.Equal(t, []*Receipt{r}, f.e.Journal())
	assert.Equal(t, krw(0), f.e.Merchant().Balance())
}

func TestSettleCashExact(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fullTill(), 10)
	_, err := f.e.AddToCart("cola", 1)
	require.NoError(t, err)
	r, err := f.e.SettleCash(money.Tender{1000: 1, 100: 1})
	require.NoError(t, err)
	assert.Equal(t, krw(0), r.Change)
	assert.Empty(t, r.ChangeGiven)
}

func TestSettleCashFailures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		till   map[currency.Nominal]uint
		tender money.Tender
		expect error
	}{
		{"underpay", fullTill(), money.Tender{1000: 3},
			&money.ErrInsufficientFunds{Tendered: krw(3000), Required: krw(3700)}},
		{"denomination", fullTill(), money.Tender{5000: 1, 50: 2},
			&money.ErrUnsupportedDenomination{Nominal: 50}},
		{"card-only", map[currency.Nominal]uint{1000: 9, 500: 50, 100: 50}, money.Tender{5000: 1},
			&ErrUnsupportedPaymentMethod{Method: "cash"}},
		{"too-large", fullTill(), money.Tender{1000: 5 + 1<<61},
			&money.ErrTenderTooLarge{Nominal: 1000, Count: 5 + 1<<61}},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, c.till, 10)
			_, err := f.e.AddToCart("kimbap", 2)
			require.NoError(t, err)
			_, err = f.e.AddToCart("cola", 1)
			require.NoError(t, err)
			before := f.snapshot()

			r, err := f.e.SettleCash(c.tender)
			assert.Nil(t, r)
			assert.Equal(t, c.expect, err)
			assert.Equal(t, before, f.snapshot())
			assert.Equal(t, StateAborted, f.e.Last())
			assert.Len(t, f.e.Cart(), 2)
		})
	}
}

// Scenario 2: KRW card with 5000 pays 7000 item.
func TestScenarioInsufficientBalance(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fullTill(), 10)
	_, err := f.e.AddToCart("cake", 1)
	require.NoError(t, err)
	before := f.snapshot()

	r, err := f.e.SettleCard("0")
	assert.Nil(t, r)
	require.Error(t, err)
	assert.Equal(t, &bank.ErrInsufficientBalance{
		Account:   f.krw.Account().MaskedNumber(),
		Requested: krw(7000),
		Available: krw(5000),
	}, err)
	assert.Equal(t, before, f.snapshot())
	assert.Empty(t, f.krw.History())
	assert.Equal(t, StateAborted, f.e.Last())

	// retry with another card keeps the cart
	r, err = f.e.SettleCard(f.usd.Number())
	require.NoError(t, err)
	assert.Equal(t, currency.New(538, currency.USD), r.Charged)
}

// Scenario 5: USD card pays 1300 KRW at 1300 KRW/USD, exactly 1.00 USD.
func TestScenarioForeignCard(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fullTill(), 10)
	_, err := f.e.AddToCart("kimbap", 1)
	require.NoError(t, err)

	r, err := f.e.SettleCard("1")
	require.NoError(t, err)
	assert.Equal(t, PaymentCard, r.Kind)
	assert.Equal(t, krw(1300), r.Total)
	assert.Equal(t, currency.New(100, currency.USD), r.Charged)
	assert.Equal(t, f.usd.MaskedNumber(), r.Card)
	assert.Equal(t, currency.New(9900, currency.USD), f.usd.Account().Balance())
	assert.Equal(t, krw(1300), f.e.Merchant().Balance())

	h := f.usd.History()
	require.Len(t, h, 1)
	assert.Equal(t, currency.New(100, currency.USD), h[0].Amount)
	assert.Contains(t, h[0].Description, "#1")

	item, err := f.inv.Get("kimbap")
	require.NoError(t, err)
	assert.Equal(t, 2, item.Stock)
}

func TestSettleCardUnknown(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fullTill(), 10)
	_, err := f.e.AddToCart("cola", 1)
	require.NoError(t, err)
	before := f.snapshot()
	_, err = f.e.SettleCard("7")
	assert.Equal(t, &bank.ErrUnknownCard{Selector: "7"}, err)
	_, err = f.e.SettleCard("1111-2222-3333-4444")
	assert.IsType(t, &bank.ErrUnknownCard{}, err)
	assert.Equal(t, before, f.snapshot())
	assert.Equal(t, StateAborted, f.e.Last())
}

// Stock changed by operator between cart and payment.
func TestSettleStockChanged(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fullTill(), 10)
	_, err := f.e.AddToCart("cola", 2)
	require.NoError(t, err)
	_, err = f.e.RemoveItem("cola")
	require.NoError(t, err)
	assert.Empty(t, f.e.Cart())

	_, err = f.e.AddToCart("kimbap", 3)
	require.NoError(t, err)
	require.NoError(t, f.inv.Commit([]inventory.Line{{Item: "kimbap", Quantity: 1}}))
	before := f.snapshot()
	_, err = f.e.SettleCard("1")
	assert.Equal(t, &inventory.ErrInsufficientStock{Item: "kimbap", Available: 2, Requested: 3}, err)
	assert.Equal(t, before, f.snapshot())
}

func TestJournalSequence(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fullTill(), 10)
	for i := 0; i < 3; i++ {
		_, err := f.e.AddToCart("cola", 1)
		require.NoError(t, err)
		_, err = f.e.SettleCard("1")
		require.NoError(t, err)
	}
	js := f.e.Journal()
	require.Len(t, js, 3)
	for i, r := range js {
		assert.Equal(t, uint32(i+1), r.Seq)
	}
	assert.NotEqual(t, js[0].ID, js[1].ID)
	assert.Equal(t, krw(3300), f.e.Merchant().Balance())
}

func TestAdmin(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[currency.Nominal]uint{10000: 1, 1000: 120}, 10)
	require.NoError(t, f.e.AddItem("tea", 4, krw(900)))
	assert.Equal(t, &inventory.ErrDuplicateItem{Item: "tea"}, f.e.AddItem("tea", 1, krw(900)))

	item, err := f.e.Restock("gum", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Stock)

	_, err = f.e.AddToCart("tea", 1)
	require.NoError(t, err)
	_, err = f.e.SetPrice("tea", krw(1000))
	require.NoError(t, err)
	q, err := f.e.Done()
	require.NoError(t, err)
	assert.Equal(t, krw(1000), q.Total)

	report := f.e.CollectCash()
	assert.Equal(t, map[currency.Nominal]uint{10000: 1, 1000: 20}, report.Collected)
	assert.Equal(t, map[currency.Nominal]uint{500: 200, 100: 1000}, report.Refilled)
}

func TestParsePaymentKind(t *testing.T) {
	t.Parallel()

	k, err := ParsePaymentKind(" Cash ")
	require.NoError(t, err)
	assert.Equal(t, PaymentCash, k)
	k, err = ParsePaymentKind("card")
	require.NoError(t, err)
	assert.Equal(t, PaymentCard, k)
	_, err = ParsePaymentKind("bitcoin")
	assert.Equal(t, &ErrUnsupportedPaymentMethod{Method: "bitcoin"}, err)
	assert.Equal(t, "AwaitingPayment", StateAwaitingPayment.String())
	assert.Equal(t, "State(42)", State(42).String())
}
