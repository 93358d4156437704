package domain

// Subscription plan identifiers as used by the pricing page and checkout.
const (
	PlanFree         = "free"
	PlanStarter      = "starter"
	PlanProfessional = "professional"
	PlanEnterprise   = "enterprise"
)

// Billing cycles offered on the pricing page.
const (
	BillingMonthly = "monthly"
	BillingYearly  = "yearly"
)

// Plans lists the known plan identifiers in pricing-table order.
var Plans = []string{PlanFree, PlanStarter, PlanProfessional, PlanEnterprise}

// ValidPlan returns true if id is a known plan.
func ValidPlan(id string) bool {
	for _, p := range Plans {
		if p == id {
			return true
		}
	}
	return false
}

// ValidBillingCycle returns true if c is a known billing cycle.
func ValidBillingCycle(c string) bool {
	return c == BillingMonthly || c == BillingYearly
}
