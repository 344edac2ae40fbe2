package upi

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestBuildPayURI(t *testing.T) {
	uri := BuildPayURI(PayRequest{
		PayeeID:   "astraschool@paytm",
		PayeeName: "Astra Preschool",
		Amount:    decimal.NewFromInt(5000),
		Note:      TransactionNote("School Fee Payment", "Aarav Sharma", "AS1001"),
	})
	want := "upi://pay?pa=astraschool@paytm&pn=Astra%20Preschool&am=5000.00&cu=INR&tn=School%20Fee%20Payment%20-%20Aarav%20Sharma%20%28AS1001%29"
	if uri != want {
		t.Fatalf("uri = %q, want %q", uri, want)
	}
}

func TestBuildPayURIFractionalAmount(t *testing.T) {
	uri := BuildPayURI(PayRequest{
		PayeeID:   "astraschool@paytm",
		PayeeName: "Astra Preschool",
		Amount:    decimal.RequireFromString("1250.5"),
		Note:      "Admission Fee",
	})
	want := "upi://pay?pa=astraschool@paytm&pn=Astra%20Preschool&am=1250.50&cu=INR&tn=Admission%20Fee"
	if uri != want {
		t.Fatalf("uri = %q, want %q", uri, want)
	}
}

func TestTransactionNote(t *testing.T) {
	got := TransactionNote("School Fee Payment", "Diya Patel", "AS1002")
	want := "School Fee Payment - Diya Patel (AS1002)"
	if got != want {
		t.Fatalf("note = %q, want %q", got, want)
	}
}
