package tui

import (
	"strings"

	"github.com/beautycrafthq/bchq/internal/plan"
	"github.com/beautycrafthq/bchq/internal/route"
	"github.com/beautycrafthq/bchq/internal/storage"
	"github.com/beautycrafthq/bchq/pkg/domain"
)

var planBlurbs = map[string]string{
	domain.PlanFree:         "Browse the catalogue and save favourites",
	domain.PlanStarter:      "Booking tools for a single chair",
	domain.PlanProfessional: "Full studio suite with client history",
	domain.PlanEnterprise:   "Multi-location salons and teams",
}

// plansModel is the pricing picker. It writes the same selection the sign-in
// flows read to continue to checkout.
type plansModel struct {
	persist  storage.Store
	cursor   int
	cycle    string
	selected plan.Selection
	hasSel   bool
}

func newPlansModel(persist storage.Store) plansModel {
	m := plansModel{persist: persist, cycle: domain.BillingMonthly}
	m.reload()
	return m
}

func (m *plansModel) reload() {
	if m.persist == nil {
		return
	}
	sel, ok, err := plan.Load(m.persist)
	if err != nil {
		return
	}
	m.selected, m.hasSel = sel, ok
	if ok {
		if sel.BillingCycle != "" {
			m.cycle = sel.BillingCycle
		}
		for i, p := range domain.Plans {
			if p == sel.Plan {
				m.cursor = i
			}
		}
	}
}

func (m *plansModel) move(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(domain.Plans) {
		m.cursor = len(domain.Plans) - 1
	}
}

func (m *plansModel) toggleCycle() {
	if m.cycle == domain.BillingYearly {
		m.cycle = domain.BillingMonthly
	} else {
		m.cycle = domain.BillingYearly
	}
}

// save persists the plan under the cursor.
func (m *plansModel) save() error {
	sel := plan.Selection{Plan: domain.Plans[m.cursor], BillingCycle: m.cycle}
	if err := plan.Save(m.persist, sel); err != nil {
		return err
	}
	m.selected, m.hasSel = sel, true
	return nil
}

func (m *plansModel) clear() error {
	if err := plan.Clear(m.persist); err != nil {
		return err
	}
	m.selected, m.hasSel = plan.Selection{}, false
	return nil
}

// checkoutTarget is the route for the saved selection, or "" when it does not
// lead to checkout.
func (m plansModel) checkoutTarget() string {
	if !m.hasSel || !m.selected.IsPaid() {
		return ""
	}
	return route.Checkout(m.selected.Plan, m.selected.BillingCycle)
}

func (m plansModel) View() string {
	var b strings.Builder
	b.WriteString("\n" + sectionHeaderStyle.Render("  PLANS") + "  " + metaStyle.Render("billing: ") + accentStyle.Render(m.cycle) + "\n\n")

	for i, p := range domain.Plans {
		marker := "  "
		if m.hasSel && m.selected.Plan == p {
			marker = okStyle.Render("● ")
		}
		name := PlanStyle(p).Render(p)
		row := "  " + marker + name + strings.Repeat(" ", 14-len(p)) + dimStyle.Render(planBlurbs[p])
		if i == m.cursor {
			row = selectedRowBg.Render(row)
		}
		b.WriteString(row + "\n")
	}

	b.WriteString("\n")
	if m.hasSel {
		b.WriteString(field("selected", PlanBadge(m.selected.Plan)+" "+metaStyle.Render(m.selected.BillingCycle)) + "\n")
		if t := m.checkoutTarget(); t != "" {
			b.WriteString(field("after sign-in", t) + "\n")
		}
	} else {
		b.WriteString(field("selected", metaStyle.Render("nothing yet")) + "\n")
	}
	return b.String()
}
