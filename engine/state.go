package engine

//go:generate stringer -type=State -trimprefix=State
type State uint8

const (
	StateInvalid State = iota
	StateBuildingCart
	StateAwaitingPayment
	StateCashFlow
	StateCardFlow
	StateSettled
	StateAborted
)
