package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                                    "/",
		"/metrics":                            "/metrics",
		"/v1/documents":                       "/v1/documents",
		"/v1/documents/d":                     "/v1/documents/:id",
		"/v1/documents/d/download":            "/v1/documents/:id/download",
		"/v1/documents/d/shares":              "/v1/documents/:id/shares",
		"/v1/documents/d/shares/s":            "/v1/documents/:id/shares/:shareId",
		"/v1/documents/d/shares/s/permission": "/v1/documents/:id/shares/:shareId/permission",
		"/v1/documents/shared/with-me":        "/v1/documents/shared/with-me",
		"/v1/audit/logs/entity/Document/d":    "/v1/audit/logs/entity/:type/:id",
		"/v1/gdpr/consents/MARKETING":         "/v1/gdpr/consents/:type",
		"/v1/gdpr/consents/MARKETING?x=1":     "/v1/gdpr/consents/:type",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
