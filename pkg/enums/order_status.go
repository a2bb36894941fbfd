package enums

// OrderStatus tracks the lifecycle of an order.
//
// The set below covers every status this core assigns itself. The type stays
// an open string because the payment reconciler stores unrecognized provider
// statuses verbatim instead of dropping them; use IsRecognized to distinguish
// the closed set from passthrough values.
type OrderStatus string

const (
	OrderStatusPending       OrderStatus = "pending"
	OrderStatusPaid          OrderStatus = "paid"
	OrderStatusPaymentFailed OrderStatus = "payment_failed"
	OrderStatusRefunded      OrderStatus = "refunded"
)

var recognizedOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusPaymentFailed,
	OrderStatusRefunded,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsRecognized reports whether the value belongs to the closed status set.
func (o OrderStatus) IsRecognized() bool {
	for _, candidate := range recognizedOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}
