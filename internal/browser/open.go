// Package browser hands URLs to the user's browser, falling back to the
// clipboard when no browser can be launched.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"
)

// Handoff reports how a URL reached the user.
type Handoff int

const (
	// Manual means the caller must print the URL.
	Manual Handoff = iota
	Opened
	Copied
)

var (
	start = func(name string, args ...string) error {
		return exec.Command(name, args...).Start()
	}
	copyText = clipboard.WriteAll
)

// command returns the launcher that opens url on goos.
func command(goos, url string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{url}, nil
	case "linux", "freebsd", "openbsd":
		return "xdg-open", []string{url}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}, nil
	default:
		return "", nil, fmt.Errorf("unsupported OS: %s", goos)
	}
}

// Open opens url in the user's default browser.
func Open(url string) error {
	name, args, err := command(runtime.GOOS, url)
	if err != nil {
		return err
	}
	return start(name, args...)
}

// OpenOrCopy tries the browser, then the clipboard.
func OpenOrCopy(url string) Handoff {
	if err := Open(url); err == nil {
		return Opened
	}
	if err := copyText(url); err == nil {
		return Copied
	}
	return Manual
}
