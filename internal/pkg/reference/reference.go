package reference

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// Ledger reference prefixes
const (
	PrefixServiceFee    = "SF"
	PrefixProcessingFee = "PAY"
	PrefixDisbursement  = "DIS"
)

// New returns a ledger reference number: prefix, dash, 8 uppercase hex chars.
// The suffix comes from crypto/rand so references are unique process-wide.
func New(prefix string) string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return prefix + "-" + strings.ToUpper(hex.EncodeToString(b))
}
