// Package plan persists the pricing selection made before sign-in so the auth
// flows can continue to checkout afterwards.
package plan

import (
	"fmt"

	"github.com/beautycrafthq/bchq/internal/route"
	"github.com/beautycrafthq/bchq/internal/storage"
	"github.com/beautycrafthq/bchq/pkg/domain"
)

// Selection is the plan and billing cycle picked on the pricing page.
type Selection struct {
	Plan         string
	BillingCycle string
}

// IsPaid reports whether the selection leads to checkout.
func (s Selection) IsPaid() bool {
	return s.Plan != "" && s.Plan != domain.PlanFree
}

// Save validates and persists sel.
func Save(store storage.Store, sel Selection) error {
	if !domain.ValidPlan(sel.Plan) {
		return fmt.Errorf("unknown plan %q", sel.Plan)
	}
	if sel.BillingCycle == "" {
		sel.BillingCycle = domain.BillingMonthly
	}
	if !domain.ValidBillingCycle(sel.BillingCycle) {
		return fmt.Errorf("unknown billing cycle %q", sel.BillingCycle)
	}
	if err := store.Put(map[string]string{
		storage.KeySelectedPlan: sel.Plan,
		storage.KeyBillingCycle: sel.BillingCycle,
	}); err != nil {
		return fmt.Errorf("plan.Save: %w", err)
	}
	return nil
}

// Load returns the persisted selection; ok is false when no plan was chosen.
func Load(store storage.Store) (sel Selection, ok bool, err error) {
	sel.Plan, err = storage.GetOptional(store, storage.KeySelectedPlan)
	if err != nil {
		return Selection{}, false, fmt.Errorf("plan.Load: %w", err)
	}
	sel.BillingCycle, err = storage.GetOptional(store, storage.KeyBillingCycle)
	if err != nil {
		return Selection{}, false, fmt.Errorf("plan.Load: %w", err)
	}
	return sel, sel.Plan != "", nil
}

// Clear forgets the selection.
func Clear(store storage.Store) error {
	if err := store.Delete(storage.KeySelectedPlan, storage.KeyBillingCycle); err != nil {
		return fmt.Errorf("plan.Clear: %w", err)
	}
	return nil
}

// NextRoute is where a freshly signed-in user goes: checkout for a paid
// selection, home otherwise. Read failures fall back to home.
func NextRoute(store storage.Store) string {
	sel, ok, err := Load(store)
	if err != nil || !ok || !sel.IsPaid() {
		return route.Home
	}
	return route.Checkout(sel.Plan, sel.BillingCycle)
}
