package engine

import "fmt"

type ErrUnsupportedPaymentMethod struct {
	Method string
}

func (e *ErrUnsupportedPaymentMethod) Error() string {
	return fmt.Sprintf("payment method=%s not supported", e.Method)
}
