package session

import (
	"strings"
	"testing"
	"time"
)

func TestCookieRoundTrip(t *testing.T) {
	want := Cookie{
		Name:    "casino_session",
		Value:   "abc.def.ghi",
		Expires: time.Now().Add(2 * time.Hour).Truncate(time.Second).UTC(),
		Secure:  true,
	}
	line := want.String()
	for _, attr := range []string{"Path=/", "HttpOnly", "SameSite=Lax", "Secure"} {
		if !strings.Contains(line, attr) {
			t.Fatalf("%q missing %s", line, attr)
		}
	}

	got, err := ParseCookie(line)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Name != want.Name || got.Value != want.Value || !got.Expires.Equal(want.Expires) || got.Secure != want.Secure {
		t.Fatalf("round trip = %+v, want %+v", got, want)
	}
}

func TestExpiredCookieDeletes(t *testing.T) {
	c := expiredCookie("casino_session", false)
	if !c.Expired(time.Now()) {
		t.Fatal("expired cookie reports live")
	}
	if line := c.String(); !strings.Contains(line, "Max-Age=0") {
		t.Fatalf("%q should carry Max-Age=0", line)
	}

	parsed, err := ParseCookie(c.String())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !parsed.Expired(time.Now()) {
		t.Fatalf("parsed expiry %s is not in the past", parsed.Expires)
	}
}

func TestParseCookieRejectsGarbage(t *testing.T) {
	if _, err := ParseCookie(""); err == nil {
		t.Fatal("expected error for empty header")
	}
}
