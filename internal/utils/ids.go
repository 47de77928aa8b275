package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

// shortID is the first block of a random UUID, upper-cased ("3F2A9C1B").
func shortID() string {
	return strings.ToUpper(strings.SplitN(uuid.NewString(), "-", 2)[0])
}

// OrderID doubles as the exit QR payload, so it stays short and printable.
func OrderID(now time.Time, userID string) string {
	return fmt.Sprintf("ORD-%d-%s-%s", now.UnixMilli(), userID, shortID())
}

func TransactionID(now time.Time) string {
	return fmt.Sprintf("TXN-OR-%d-%s", now.UnixMilli(), shortID())
}

// LedgerID prefixes funding entries with F and checkout debits with D.
func LedgerID(kind string, now time.Time) string {
	return fmt.Sprintf("TXN-%s-%d-%s", kind, now.UnixMilli(), shortID())
}

func PaymentRef(now time.Time) string {
	return fmt.Sprintf("AUTO-%d", now.UnixMilli())
}

// LoginCode is a six digit one-time code handed out at registration.
func LoginCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return fmt.Sprintf("%06d", 100000+time.Now().UnixNano()%900000)
	}
	return fmt.Sprintf("%06d", 100000+n.Int64())
}
