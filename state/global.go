package state

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/juju/errors"
	"github.com/shopspring/decimal"
	"github.com/temoto/alive/v2"
	"github.com/temoto/vendsim/bank"
	"github.com/temoto/vendsim/currency"
	"github.com/temoto/vendsim/engine"
	"github.com/temoto/vendsim/engine/inventory"
	"github.com/temoto/vendsim/helpers"
	"github.com/temoto/vendsim/log2"
	"github.com/temoto/vendsim/money"
	money_config "github.com/temoto/vendsim/money/config"
)

const DefaultMerchant = "vending machine"

// Global is the whole machine assembled from config.
type Global struct {
	Alive     *alive.Alive
	Bank      *bank.Bank
	Config    *Config
	Engine    *engine.Engine
	Inventory *inventory.Inventory
	Log       *log2.Log
	Rand      *rand.Rand
	Rates     *currency.RateTable
	Till      *money.Till

	lk sync.Mutex
}

const ContextKey = "run/state-global"

func GetGlobal(ctx context.Context) *Global {
	v := ctx.Value(ContextKey)
	if v == nil {
		panic(fmt.Sprintf("context['%s'] is nil", ContextKey))
	}
	if g, ok := v.(*Global); ok {
		return g
	}
	panic(fmt.Sprintf("context['%s'] expected type *Global actual=%#v", ContextKey, v))
}

func NewContext(log *log2.Log) (context.Context, *Global) {
	if log == nil {
		panic("code error NewContext() log=nil")
	}
	g := &Global{
		Alive: alive.NewAlive(),
		Log:   log,
	}
	ctx := context.Background()
	ctx = context.WithValue(ctx, ContextKey, g)
	return ctx, g
}

// If `Init` fails, consider `Global` is in broken state.
func (g *Global) Init(ctx context.Context, cfg *Config) error {
	g.lk.Lock()
	defer g.lk.Unlock()
	g.Config = cfg
	if g.Rand == nil {
		g.Rand = helpers.RandUnix()
	}

	if err := g.initCurrency(); err != nil {
		return errors.Annotate(err, "config currency")
	}

	if len(cfg.Money.Denominations) == 0 {
		def := money_config.Default()
		if cfg.Money.Home == "" {
			cfg.Money.Home = def.Home
		}
		cfg.Money.Denominations = def.Denominations
		g.Log.Debugf("config: money.denomination not set, using defaults")
	}
	if cfg.Money.Home == "" {
		return errors.NotValidf("config: money.home=(empty)")
	}
	till, err := money.NewFromConfig(g.Log, &cfg.Money)
	if err != nil {
		return errors.Annotate(err, "config money")
	}
	g.Till = till
	if _, err := g.Rates.Rate(till.Home()); err != nil {
		return errors.Annotatef(err, "config: money.home=%s no exchange rate", till.Home())
	}

	errs := make([]error, 0)

	ic := &cfg.Engine.Inventory
	g.Inventory = inventory.New(g.Log, till.Home(), ic.MaxItems, ic.MaxStock)
	if err := g.Inventory.Init(ic, g.Rand); err != nil {
		errs = append(errs, err)
	}

	g.Bank = bank.New(g.Log, g.Rates, g.Rand)
	merchantName := cfg.Bank.Merchant
	if merchantName == "" {
		merchantName = DefaultMerchant
	}
	merchant, err := g.Bank.OpenAccount(merchantName, till.Home())
	if err != nil {
		return errors.Annotate(err, "config bank.merchant")
	}
	errs = append(errs, g.initCards()...)

	g.Engine, err = engine.New(g.Log, g.Inventory, g.Till, g.Bank, merchant)
	if err != nil {
		errs = append(errs, err)
	}

	return helpers.FoldErrors(errs)
}

func (g *Global) MustInit(ctx context.Context, cfg *Config) {
	err := g.Init(ctx, cfg)
	if err != nil {
		g.Log.Fatal(errors.ErrorStack(err))
	}
}

func (g *Global) Error(err error, args ...interface{}) {
	if err != nil {
		if len(args) != 0 {
			msg := args[0].(string)
			args = args[1:]
			err = errors.Annotatef(err, msg, args...)
		}
		g.Log.Error(errors.ErrorStack(err))
	}
}

func (g *Global) initCurrency() error {
	c := &g.Config.Currency
	base := currency.USD
	if c.Base != "" {
		base = currency.Code(strings.ToUpper(c.Base))
	}
	rounding, err := currency.ParseRounding(c.Rounding)
	if err != nil {
		return err
	}

	errs := make([]error, 0)
	for _, u := range c.Units {
		code := currency.Code(strings.ToUpper(u.Code))
		if !code.Valid() {
			if u.Digits < 0 || u.Digits > 4 {
				errs = append(errs, errors.NotValidf("currency.unit=%s digits=%d", code, u.Digits))
				continue
			}
			currency.Register(code, int32(u.Digits), u.Symbol)
		}
	}
	if !base.Valid() {
		return &currency.ErrUnknownCurrency{Code: base}
	}

	if base == currency.USD {
		g.Rates = currency.DefaultRateTable(rounding)
	} else {
		g.Rates = currency.NewRateTable(base, rounding)
	}

	for _, u := range c.Units {
		if u.PerBase == "" {
			continue
		}
		code := currency.Code(strings.ToUpper(u.Code))
		perBase, err := decimal.NewFromString(u.PerBase)
		if err != nil {
			errs = append(errs, errors.Annotatef(err, "currency.unit=%s per_base", code))
			continue
		}
		if err := g.Rates.Set(code, perBase); err != nil {
			errs = append(errs, errors.Annotatef(err, "currency.unit=%s", code))
		}
	}
	return helpers.FoldErrors(errs)
}

func (g *Global) initCards() []error {
	errs := make([]error, 0)
	for _, cc := range g.Config.Bank.Cards {
		code, err := currency.ParseCode(cc.Currency)
		if err != nil {
			errs = append(errs, errors.Annotatef(err, "config bank.card=%s", cc.Owner))
			continue
		}
		card, err := g.Bank.Issue(cc.Owner, code)
		if err != nil {
			errs = append(errs, errors.Annotatef(err, "config bank.card=%s", cc.Owner))
			continue
		}

		depositCode := code
		if cc.DepositCurrency != "" {
			if depositCode, err = currency.ParseCode(cc.DepositCurrency); err != nil {
				errs = append(errs, errors.Annotatef(err, "config bank.card=%s deposit_currency", cc.Owner))
				continue
			}
		}
		major := cc.Deposit
		if cc.RandomDeposit {
			major = (100 + g.Rand.Intn(900)) * 1000
		}
		if major < 0 {
			errs = append(errs, errors.NotValidf("config bank.card=%s deposit=%d", cc.Owner, major))
			continue
		}
		if major == 0 {
			continue
		}
		deposit := currency.FromMajor(decimal.NewFromInt(int64(major)), depositCode)
		got, err := g.Bank.DepositConverted(card.Account(), deposit)
		if err != nil {
			errs = append(errs, errors.Annotatef(err, "config bank.card=%s deposit", cc.Owner))
			continue
		}
		g.Log.Debugf("config: bank.card=%s %s deposit=%s balance=%s", cc.Owner, card.MaskedNumber(), deposit.String(), got.String())
	}
	return errs
}
