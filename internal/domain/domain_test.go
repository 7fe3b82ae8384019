package domain

import (
	"strings"
	"testing"
	"time"
)

func TestSessionComplete(t *testing.T) {
	cases := []struct {
		name string
		sess Session
		want bool
	}{
		{"both", Session{Token: "tok", ClientID: 1}, true},
		{"token only", Session{Token: "tok"}, false},
		{"id only", Session{ClientID: 1}, false},
		{"empty", Session{}, false},
	}
	for _, tc := range cases {
		if got := tc.sess.Complete(); got != tc.want {
			t.Errorf("%s: Complete() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	if (Session{Token: "tok", ClientID: 1}).Expired(now) {
		t.Error("zero expiry reported expired")
	}
	if !(Session{ExpiresAt: now.Add(-time.Minute)}).Expired(now) {
		t.Error("past expiry not reported")
	}
	if (Session{ExpiresAt: now.Add(time.Minute)}).Expired(now) {
		t.Error("future expiry reported expired")
	}
}

func TestTotalsCoherent(t *testing.T) {
	if !(Totals{HT: 10.83, TVA: 2.17, TTC: 13}).Coherent() {
		t.Error("exact sum reported incoherent")
	}
	if (Totals{HT: 10, TVA: 2, TTC: 13}).Coherent() {
		t.Error("wrong sum reported coherent")
	}
	// Float arithmetic noise stays within tolerance.
	ttc := 3.50 * 3
	ht := ttc / 1.2
	if !(Totals{HT: ht, TVA: ttc - ht, TTC: ttc}).Coherent() {
		t.Error("derived figures reported incoherent")
	}
}

func TestCartAggregates(t *testing.T) {
	c := Cart{Lines: []CartLine{
		{UnitPriceTTC: 9, Quantity: 2, Weight: 0.6},
		{UnitPriceTTC: 6, Quantity: 1, Weight: 0.12},
	}}
	if c.ItemCount() != 3 {
		t.Errorf("ItemCount = %d, want 3", c.ItemCount())
	}
	if c.RecomputedTTC() != 24 {
		t.Errorf("RecomputedTTC = %v, want 24", c.RecomputedTTC())
	}
	if got := c.TotalWeight(); got != 1.32 {
		t.Errorf("TotalWeight = %v, want 1.32", got)
	}
}

func TestOrderStatusCancellable(t *testing.T) {
	cancellable := map[OrderStatus]bool{
		StatusEnAttente:     true,
		StatusConfirmee:     true,
		StatusEnCours:       false,
		StatusEnPreparation: false,
		StatusEnLivraison:   false,
		StatusLivree:        false,
		StatusTerminee:      false,
		StatusAnnulee:       false,
	}
	for status, want := range cancellable {
		if got := status.Cancellable(); got != want {
			t.Errorf("%s: Cancellable() = %v, want %v", status, got, want)
		}
	}
}

func TestDraftGrandTotal(t *testing.T) {
	d := DraftOrder{TotalTTC: 18}
	if d.GrandTotal() != 18 {
		t.Errorf("GrandTotal without carrier = %v", d.GrandTotal())
	}
	d.Carrier = &Carrier{Price: 3.5}
	if d.GrandTotal() != 21.5 {
		t.Errorf("GrandTotal with carrier = %v", d.GrandTotal())
	}
}

func TestAPIErrorIncludesDetails(t *testing.T) {
	err := &APIError{
		Status:  400,
		Message: "stock insuffisant",
		Details: []StockIssue{{Produit: "Miel", QuantiteCommandee: 3, StockDisponible: 1}},
	}
	msg := err.Error()
	if !strings.Contains(msg, "stock insuffisant") || !strings.Contains(msg, "Miel") {
		t.Errorf("Error() = %q", msg)
	}

	bare := &APIError{Status: 500, Message: "boom"}
	if bare.Error() != "boom" {
		t.Errorf("Error() = %q", bare.Error())
	}
}

func TestAccountFullName(t *testing.T) {
	cases := []struct {
		account Account
		want    string
	}{
		{Account{FirstName: "Alice", LastName: "Martin"}, "Alice Martin"},
		{Account{FirstName: "Alice"}, "Alice"},
		{Account{LastName: "Martin"}, "Martin"},
	}
	for _, tc := range cases {
		if got := tc.account.FullName(); got != tc.want {
			t.Errorf("FullName() = %q, want %q", got, tc.want)
		}
	}
}

func TestThemeCatalog(t *testing.T) {
	themes := Themes()
	if len(themes) != 4 || themes[0].Name != "clair" {
		t.Errorf("catalog = %+v", themes)
	}
	if _, ok := ThemeByName("sombre"); !ok {
		t.Error("sombre missing from catalog")
	}
	if _, ok := ThemeByName("néon"); ok {
		t.Error("unknown theme found")
	}
}
