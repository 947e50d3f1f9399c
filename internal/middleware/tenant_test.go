package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func requestContext(t *testing.T, host, header string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "http://"+host+"/api/v1/institute", nil)
	c.Request.Host = host
	if header != "" {
		c.Request.Header.Set(HeaderInstitute, header)
	}
	return c
}

func TestInstituteCodeFromHost(t *testing.T) {
	cases := []struct {
		name string
		host string
		want string
	}{
		{"subdomain", "dps.edumitra.app", "dps"},
		{"subdomain with port", "dps.edumitra.app:8080", "dps"},
		{"uppercase host", "DPS.EduMitra.App", "dps"},
		{"apex domain", "edumitra.app", ""},
		{"nested subdomain", "a.dps.edumitra.app", ""},
		{"unrelated domain", "dps.other.app", ""},
		{"suffix lookalike", "dpsedumitra.app", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := requestContext(t, tc.host, "")
			if got := instituteCode(c, "edumitra.app"); got != tc.want {
				t.Fatalf("instituteCode(%q) = %q, want %q", tc.host, got, tc.want)
			}
		})
	}
}

func TestInstituteCodeHeaderOverridesHost(t *testing.T) {
	c := requestContext(t, "dps.edumitra.app", "  StJoseph ")
	if got := instituteCode(c, "edumitra.app"); got != "stjoseph" {
		t.Fatalf("instituteCode = %q, want %q", got, "stjoseph")
	}
}

func TestGetInstituteMissing(t *testing.T) {
	c := requestContext(t, "edumitra.app", "")
	if inst := GetInstitute(c); inst != nil {
		t.Fatalf("expected nil institute on unresolved context, got %+v", inst)
	}
}
