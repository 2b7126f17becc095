package model

import (
	"time"

	"github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/domain/enums"
)

// OTPRecord is one issued one-time code. Records are never deleted;
// supersession and exhaustion are expressed through Status.
type OTPRecord struct {
	ID       int64           `json:"id"`
	Subject  string          `json:"subject"`
	Purpose  string          `json:"purpose"`
	IP       string          `json:"ip"`
	Code     int64           `json:"code"`
	Status   enums.OTPStatus `json:"status"`
	Attempts int             `json:"attempts"`
	IssuedAt time.Time       `json:"issued_at"`
}
