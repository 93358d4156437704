package main

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/lipgloss"

	"github.com/beautycrafthq/bchq/internal/session"
)

var welcomeLines = [...]string{
	"Your chair is ready. Your account isn't yet.",
	"Fresh appointments are waiting on the other side of a sign-in.",
	"Every great look starts with a consultation. This one starts with a login.",
	"The studio lights are on. Come on in.",
	"Clients are booking. Let's get you signed in.",
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e26d8a")).
			Bold(true)

	quoteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	nameStyle = lipgloss.NewStyle().Bold(true)
)

func printWelcome(w io.Writer) {
	msg := welcomeLines[rand.IntN(len(welcomeLines))]
	fmt.Fprintf(w, "\n%s\n\n%s\n\n%s\n%s\n%s\n\n",
		titleStyle.Render("BEAUTY CRAFT HQ"),
		quoteStyle.Render(msg),
		hintStyle.Render("Sign in:        bchq login"),
		hintStyle.Render("With Google:    bchq google"),
		hintStyle.Render("New here?       bchq signup"),
	)
}

func printSignedIn(w io.Writer, st session.State) {
	if st.User == nil {
		fmt.Fprintln(w, "Signed in.")
		return
	}
	fmt.Fprintf(w, "Signed in as %s\n", nameStyle.Render(st.User.DisplayName()))
}
