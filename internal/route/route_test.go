package route

import "testing"

func TestCheckout(t *testing.T) {
	tests := []struct {
		plan, cycle, want string
	}{
		{"professional", "", "/subscribe?plan=professional"},
		{"starter", "yearly", "/subscribe?billing_cycle=yearly&plan=starter"},
	}
	for _, tt := range tests {
		t.Run(tt.plan, func(t *testing.T) {
			if got := Checkout(tt.plan, tt.cycle); got != tt.want {
				t.Errorf("Checkout(%q, %q) = %q, want %q", tt.plan, tt.cycle, got, tt.want)
			}
		})
	}
}

func TestPath(t *testing.T) {
	if got := Path(Checkout("starter", "monthly")); got != Subscribe {
		t.Errorf("Path() = %q, want %q", got, Subscribe)
	}
	if got := Path(Home); got != Home {
		t.Errorf("Path(%q) = %q", Home, got)
	}
}

func TestWebURL(t *testing.T) {
	tests := []struct {
		api, want string
	}{
		{"https://api.beautycrafthq.com", "https://beautycrafthq.com"},
		{"https://api.beautycrafthq.com/", "https://beautycrafthq.com"},
		{"http://api.localhost:8000", "http://localhost:8000"},
		{"http://127.0.0.1:8000", "http://127.0.0.1:8000"},
	}
	for _, tt := range tests {
		t.Run(tt.api, func(t *testing.T) {
			if got := WebURL(tt.api); got != tt.want {
				t.Errorf("WebURL(%q) = %q, want %q", tt.api, got, tt.want)
			}
		})
	}
}

func TestAbsolute(t *testing.T) {
	got := Absolute("https://beautycrafthq.com/", Checkout("starter", "monthly"))
	want := "https://beautycrafthq.com/subscribe?billing_cycle=monthly&plan=starter"
	if got != want {
		t.Errorf("Absolute() = %q, want %q", got, want)
	}
}
