package cache

import (
	"sync"
)

var paymentTypeLabels = map[string]string{
	"credit_card": "Cartão de Crédito",
	"boleto":      "Boleto",
	"voucher":     "Voucher",
	"debit_card":  "Cartão de Débito",
	"not_defined": "Não Definido",
}

// PaymentMethodCache definition
type PaymentMethodCache struct {
	LabelCache map[string]string // payment type to label
	Mutex      sync.RWMutex
}

func newPaymentMethodCache() *PaymentMethodCache {
	c := &PaymentMethodCache{
		LabelCache: make(map[string]string, len(paymentTypeLabels)),
	}
	for k, v := range paymentTypeLabels {
		c.LabelCache[k] = v
	}
	return c
}

// GetLabel fetches the display label of a payment type, falling back to the type itself.
func (c *PaymentMethodCache) GetLabel(paymentType string) string {
	c.Mutex.RLock()
	defer c.Mutex.RUnlock()

	if label, ok := c.LabelCache[paymentType]; ok {
		return label
	}
	return paymentType
}
