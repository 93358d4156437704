package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/beautycrafthq/bchq/internal/session"
)

// accountModel renders the signed-in user's record.
type accountModel struct {
	state session.State
	token string
	now   func() time.Time
}

func newAccountModel() accountModel {
	return accountModel{now: time.Now}
}

func (m accountModel) View() string {
	var b strings.Builder
	b.WriteString("\n")

	u := m.state.User
	if !m.state.IsAuthenticated || u == nil {
		b.WriteString(sectionHeaderStyle.Render("  SIGNED OUT") + "\n\n")
		b.WriteString(field("", "Run `bchq login`, `bchq signup` or `bchq google` to sign in.") + "\n")
		return b.String()
	}

	b.WriteString(sectionHeaderStyle.Render("  ACCOUNT") + "\n\n")
	b.WriteString(field("name", selectedStyle.Render(u.DisplayName())) + "\n")
	b.WriteString(field("email", u.Email) + "\n")
	b.WriteString(field("user id", fmt.Sprintf("%d", u.ID)) + "\n")
	b.WriteString(field("active", yesNo(u.IsActive)) + "\n")
	b.WriteString(field("phone verified", yesNo(u.IsVerified)) + "\n")
	b.WriteString(field("member since", formatDate(u.CreatedAt)) + "\n")

	b.WriteString("\n" + sectionHeaderStyle.Render("  SUBSCRIPTION") + "\n\n")
	plan := u.SubscriptionType
	if plan == "" {
		plan = "none"
	}
	b.WriteString(field("plan", PlanStyle(u.SubscriptionType).Render(plan)) + "\n")
	if u.SubscriptionEndsAt != nil {
		b.WriteString(field("renews", formatDate(*u.SubscriptionEndsAt)+" "+metaStyle.Render("("+formatUntil(*u.SubscriptionEndsAt, m.now())+")")) + "\n")
	}
	if u.NeedsSubscription {
		b.WriteString(field("", warnStyle.Render("A subscription is required. Pick a plan on tab 2.")) + "\n")
	}

	if exp, ok := session.TokenExpiry(m.token); ok {
		b.WriteString("\n" + sectionHeaderStyle.Render("  SESSION") + "\n\n")
		line := formatUntil(exp, m.now())
		if exp.Before(m.now()) {
			line = errorStyle.Render(line)
		}
		b.WriteString(field("token expires", line) + "\n")
	}
	return b.String()
}
