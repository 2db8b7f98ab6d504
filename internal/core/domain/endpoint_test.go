package domain

import (
	"math"
	"testing"
)

func TestEndpoint_SuccessRate(t *testing.T) {
	tests := []struct {
		name     string
		success  int64
		failure  int64
		expected float64
	}{
		{"never tested", 0, 0, 0},
		{"all successes", 10, 0, 1.0},
		{"all failures", 0, 10, 0},
		{"mixed", 9, 1, 0.9},
		{"below deactivation floor", 1, 10, 1.0 / 11.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Endpoint{SuccessCount: tt.success, FailureCount: tt.failure}
			if got := e.SuccessRate(); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("SuccessRate() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestEndpoint_SmoothedSuccessRate(t *testing.T) {
	tests := []struct {
		name     string
		success  int64
		failure  int64
		expected float64
	}{
		{"never tested sits at zero numerator", 0, 0, 0},
		{"single success does not hit 1.0", 1, 0, 0.5},
		{"nine of ten", 9, 1, 9.0 / 11.0},
		{"ninety of hundred", 90, 10, 90.0 / 101.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Endpoint{SuccessCount: tt.success, FailureCount: tt.failure}
			if got := e.SmoothedSuccessRate(); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("SmoothedSuccessRate() = %v, want %v", got, tt.expected)
			}
		})
	}
}

// The smoothing term must rank a long proven track record above a short
// lucky streak with a higher raw rate.
func TestEndpoint_SmoothedRate_FavoursTrackRecord(t *testing.T) {
	short := &Endpoint{SuccessCount: 9, FailureCount: 1}    // raw 90%
	proven := &Endpoint{SuccessCount: 90, FailureCount: 10} // raw 90%

	if proven.SmoothedSuccessRate() <= short.SmoothedSuccessRate() {
		t.Errorf("90/100 (%.4f) should outrank 9/10 (%.4f)",
			proven.SmoothedSuccessRate(), short.SmoothedSuccessRate())
	}
}

func TestEndpoint_HasAuth(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		expected bool
	}{
		{"no credentials", "", "", false},
		{"username only", "user", "", false},
		{"password only", "", "pass", false},
		{"both", "user", "pass", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Endpoint{Username: tt.username, Password: tt.password}
			if got := e.HasAuth(); got != tt.expected {
				t.Errorf("HasAuth() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestConstraints_Matches(t *testing.T) {
	authenticated := &Endpoint{Kind: KindHTTPProxy, Username: "user", Password: "pass"}
	open := &Endpoint{Kind: KindHTTPProxy}
	stream := &Endpoint{Kind: KindStreamURL, Group: "sports-1"}

	tests := []struct {
		name        string
		constraints Constraints
		endpoint    *Endpoint
		expected    bool
	}{
		{"empty constraints match anything", Constraints{}, authenticated, true},
		{"kind filter match", Constraints{Kind: KindHTTPProxy}, open, true},
		{"kind filter mismatch", Constraints{Kind: KindSocksProxy}, open, false},
		{"exclude authenticated rejects credentials", Constraints{ExcludeAuthenticated: true}, authenticated, false},
		{"exclude authenticated passes open", Constraints{ExcludeAuthenticated: true}, open, true},
		{"group filter match", Constraints{Group: "sports-1"}, stream, true},
		{"group filter mismatch", Constraints{Group: "news-2"}, stream, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.constraints.Matches(tt.endpoint); got != tt.expected {
				t.Errorf("Matches() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestEndpointKind_IsValid(t *testing.T) {
	valid := []EndpointKind{KindHTTPProxy, KindSocksProxy, KindStreamURL}
	for _, k := range valid {
		if !k.IsValid() {
			t.Errorf("expected %q to be valid", k)
		}
	}
	if EndpointKind("ftp-proxy").IsValid() {
		t.Error("expected unknown kind to be invalid")
	}
	if EndpointKind("").IsValid() {
		t.Error("expected empty kind to be invalid")
	}
}
