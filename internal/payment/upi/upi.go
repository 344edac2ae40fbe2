// Package upi builds scan-and-pay deep links understood by Indian UPI apps.
package upi

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// PayRequest describes one collect request to encode.
type PayRequest struct {
	PayeeID   string
	PayeeName string
	Amount    decimal.Decimal
	Note      string
}

// BuildPayURI renders the upi://pay deep link. Parameter order is fixed:
// pa, pn, am, cu, tn. The amount always carries two decimals and the
// currency is always INR.
func BuildPayURI(req PayRequest) string {
	return fmt.Sprintf("upi://pay?pa=%s&pn=%s&am=%s&cu=INR&tn=%s",
		req.PayeeID,
		escape(req.PayeeName),
		req.Amount.Round(2).StringFixed(2),
		escape(req.Note),
	)
}

// TransactionNote renders the standard note: purpose, student name, code.
func TransactionNote(purpose, studentName, studentCode string) string {
	return purpose + " - " + studentName + " (" + studentCode + ")"
}

// escape percent-encodes like browsers do, spaces as %20 rather than +.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
