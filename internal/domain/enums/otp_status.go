package enums

type OTPStatus string

const (
	OTPStatusPending     OTPStatus = "pending"
	OTPStatusConsumed    OTPStatus = "consumed"
	OTPStatusInvalidated OTPStatus = "invalidated"
)
