package enums

// PaymentStatus is the platform-side view of a captured payment. Gateway
// lifecycle strings stay free-form on the order row; enrollments only ever
// record captured payments.
type PaymentStatus string

const (
	PaymentStatusCaptured PaymentStatus = "captured"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusUnknown  PaymentStatus = "unknown"
)

// String implements fmt.Stringer.
func (p PaymentStatus) String() string {
	return string(p)
}
