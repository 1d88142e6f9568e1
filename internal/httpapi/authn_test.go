package httpapi

import (
	"net/http"
	"testing"
)

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"valid", "Bearer abc.def.ghi", "abc.def.ghi", false},
		{"case insensitive scheme", "bearer abc", "abc", false},
		{"missing", "", "", true},
		{"wrong scheme", "Basic dXNlcg==", "", true},
		{"empty token", "Bearer   ", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := extractBearerToken(tc.header)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("extractBearerToken(%q) = %q, want error", tc.header, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("extractBearerToken(%q): %v", tc.header, err)
			}
			if got != tc.want {
				t.Fatalf("token = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	for _, path := range []string{
		"/v1/auth/profile",
		"/v1/documents",
		"/v1/documents/shared/with-me",
		"/v1/audit/logs/my",
		"/v1/gdpr/export",
		"/v1/gdpr/consents",
	} {
		if res := c.do(http.MethodGet, path, nil, nil); res.StatusCode != http.StatusUnauthorized {
			t.Fatalf("GET %s status = %d, want 401", path, res.StatusCode)
		}
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)
	c.token = "not-a-jwt"

	if res := c.do(http.MethodGet, "/v1/auth/profile", nil, nil); res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", res.StatusCode)
	}
}

func TestPublicPaths(t *testing.T) {
	for _, path := range []string{"/v1/auth/login", "/v1/auth/verify-otp", "/healthz", "/readyz", "/metrics", "/v1/info"} {
		if !isPublicPath(path) {
			t.Fatalf("%s should be public", path)
		}
	}
	for _, path := range []string{"/v1/documents", "/v1/gdpr/export", "/v1/audit/logs"} {
		if isPublicPath(path) {
			t.Fatalf("%s should require authentication", path)
		}
	}
}
