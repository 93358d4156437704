// Package route names the destinations the auth flows hand the user to.
package route

import (
	"net/url"
	"strings"
)

const (
	Home        = "/"
	Login       = "/login"
	VerifyPhone = "/verify-phone"
	Subscribe   = "/subscribe"
)

// Checkout returns the subscription route preselecting plan and, when set,
// the billing cycle.
func Checkout(plan, cycle string) string {
	params := url.Values{}
	params.Set("plan", plan)
	if cycle != "" {
		params.Set("billing_cycle", cycle)
	}
	return Subscribe + "?" + params.Encode()
}

// Path returns target without its query string.
func Path(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	return u.Path
}

// WebURL derives the web app origin from the API origin by dropping a leading
// "api." from the host: https://api.beautycrafthq.com -> https://beautycrafthq.com.
func WebURL(apiURL string) string {
	u, err := url.Parse(apiURL)
	if err != nil || u.Host == "" {
		return strings.TrimRight(apiURL, "/")
	}
	if host := u.Hostname(); strings.HasPrefix(host, "api.") {
		port := u.Port()
		u.Host = strings.TrimPrefix(host, "api.")
		if port != "" {
			u.Host += ":" + port
		}
	}
	u.Path = ""
	u.RawQuery = ""
	return u.String()
}

// Absolute joins a route onto the web app origin.
func Absolute(webURL, target string) string {
	return strings.TrimRight(webURL, "/") + target
}
