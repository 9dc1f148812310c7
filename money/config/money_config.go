package money_config

type Config struct {
	// Home is machine currency: prices, till denominations, merchant account.
	Home string `hcl:"home"`
	// ChangeStrategy is least_count (default, greedy) or most_available.
	ChangeStrategy string `hcl:"change_strategy"`
	// CashMinCount is minimal pieces of every change denomination required to accept cash.
	CashMinCount  int            `hcl:"cash_min_count"`
	Denominations []Denomination `hcl:"denomination"`
}

type Denomination struct {
	Nominal  string `hcl:"nominal,key"`
	Count    int    `hcl:"count"`
	Capacity int    `hcl:"capacity"`
	Accept   bool   `hcl:"accept"`
	Change   bool   `hcl:"change"`
}

const DefaultCashMinCount = 10

// Default is KRW machine: bills 10000 and 5000 only go in, 1000/500/100 also go out as change.
func Default() Config {
	return Config{
		Home:         "KRW",
		CashMinCount: DefaultCashMinCount,
		Denominations: []Denomination{
			{Nominal: "10000", Accept: true},
			{Nominal: "5000", Accept: true},
			{Nominal: "1000", Count: 100, Capacity: 100, Accept: true, Change: true},
			{Nominal: "500", Count: 200, Capacity: 200, Accept: true, Change: true},
			{Nominal: "100", Count: 1000, Capacity: 1000, Accept: true, Change: true},
		},
	}
}
