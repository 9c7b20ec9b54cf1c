package handlers

import "net/http"

// Credits reports the current balance.
func (a *App) Credits(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]int{"credits": a.Registry.Credits()})
}

// PurchaseCredits adds one bundle to the balance. There is no payment
// flow behind this; the purchase always succeeds.
func (a *App) PurchaseCredits(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]int{"credits": a.Registry.Purchase()})
}
