package state

import (
	"path/filepath"
	"sync"

	"github.com/hashicorp/hcl"
	"github.com/juju/errors"
	engine_config "github.com/temoto/vendsim/engine/config"
	"github.com/temoto/vendsim/helpers"
	"github.com/temoto/vendsim/log2"
	money_config "github.com/temoto/vendsim/money/config"
)

type Config struct {
	// includeSeen contains absolute paths to prevent include loops
	includeSeen map[string]struct{}
	// only used for Unmarshal, do not access
	XXX_Include []ConfigSource `hcl:"include"`

	Currency CurrencyConfig       `hcl:"currency"`
	Engine   engine_config.Config `hcl:"engine"`
	Money    money_config.Config  `hcl:"money"`
	Bank     BankConfig           `hcl:"bank"`
	// error, info, debug
	LogLevel string `hcl:"log_level"`

	UI struct {
		Prompt    string `hcl:"prompt"`
		ReceiptQR bool   `hcl:"receipt_qr"`
		Service   struct {
			Auth struct {
				Enable    bool     `hcl:"enable"`
				Passwords []string `hcl:"passwords"`
			}
		}
	}

	_copy_guard sync.Mutex //nolint:unused
}

type ConfigSource struct {
	Name     string `hcl:"name,key"`
	Optional bool   `hcl:"optional"`
}

type CurrencyConfig struct {
	Base string `hcl:"base"`
	// half_away (default) or bank
	Rounding string       `hcl:"rounding"`
	Units    []UnitConfig `hcl:"unit"`
}

// UnitConfig registers new currency or overrides exchange rate of known one.
type UnitConfig struct {
	Code   string `hcl:"code,key"`
	Digits int    `hcl:"digits"`
	Symbol string `hcl:"symbol"`
	// units of this currency per one base unit, quote fractions: per_base = "7.22"
	PerBase string `hcl:"per_base"`
}

type BankConfig struct {
	Merchant string       `hcl:"merchant"`
	Cards    []CardConfig `hcl:"card"`
}

// CardConfig issues demo card at start.
type CardConfig struct {
	Owner    string `hcl:"owner,key"`
	Currency string `hcl:"currency"`
	// Deposit in major units of DepositCurrency, converted to card currency.
	Deposit         int    `hcl:"deposit"`
	DepositCurrency string `hcl:"deposit_currency"`
	// RandomDeposit replaces Deposit with random 100..999 thousands.
	RandomDeposit bool `hcl:"random_deposit"`
}

func (c *Config) read(log *log2.Log, fs FullReader, source ConfigSource, errs *[]error) {
	norm := fs.Normalize(source.Name)
	if _, ok := c.includeSeen[norm]; ok {
		log.Fatalf("config duplicate source=%s", source.Name)
	} else {
		log.Debugf("config reading source='%s' path=%s", source.Name, norm)
	}
	c.includeSeen[source.Name] = struct{}{}
	c.includeSeen[norm] = struct{}{}

	bs, err := fs.ReadAll(norm)
	if bs == nil && err == nil {
		if !source.Optional {
			err = errors.NotFoundf("config required name=%s path=%s", source.Name, norm)
			*errs = append(*errs, err)
		}
		return
	}
	if err != nil {
		*errs = append(*errs, errors.Annotatef(err, "config source=%s", source.Name))
		return
	}

	err = hcl.Unmarshal(bs, c)
	if err != nil {
		err = errors.Annotatef(err, "config unmarshal source=%s content='%s'", source.Name, string(bs))
		*errs = append(*errs, err)
		return
	}

	var includes []ConfigSource
	includes, c.XXX_Include = c.XXX_Include, nil
	for _, include := range includes {
		includeNorm := fs.Normalize(include.Name)
		if _, ok := c.includeSeen[includeNorm]; ok {
			err = errors.Errorf("config include loop: from=%s include=%s", source.Name, include.Name)
			*errs = append(*errs, err)
			continue
		}
		c.read(log, fs, include, errs)
	}
}

func ReadConfig(log *log2.Log, fs FullReader, names ...string) (*Config, error) {
	if len(names) == 0 {
		log.Fatal("code error [Must]ReadConfig() without names")
	}

	if osfs, ok := fs.(*OsFullReader); ok {
		dir, name := filepath.Split(names[0])
		osfs.SetBase(dir)
		names[0] = name
	}
	c := &Config{
		includeSeen: make(map[string]struct{}),
	}
	errs := make([]error, 0, 8)
	for _, name := range names {
		c.read(log, fs, ConfigSource{Name: name}, &errs)
	}
	return c, helpers.FoldErrors(errs)
}

func MustReadConfig(log *log2.Log, fs FullReader, names ...string) *Config {
	c, err := ReadConfig(log, fs, names...)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	return c
}
