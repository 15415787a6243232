package session

import (
	"fmt"
	"net/http"
	"time"
)

// Cookie policy shared by every session cookie.
const (
	CookiePath     = "/"
	CookieSameSite = http.SameSiteLaxMode
)

// Cookie is the client-side handle of a session.
type Cookie struct {
	Name    string
	Value   string
	Expires time.Time
	Secure  bool
}

// HTTP converts c to a net/http cookie. An expiry in the past produces a
// deletion cookie (Max-Age=0).
func (c Cookie) HTTP() *http.Cookie {
	hc := &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     CookiePath,
		Expires:  c.Expires.UTC(),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: CookieSameSite,
	}
	if !c.Expires.After(time.Now()) {
		hc.MaxAge = -1
	}
	return hc
}

// String returns the Set-Cookie header value.
func (c Cookie) String() string {
	return c.HTTP().String()
}

// Expired reports whether the cookie tells the client to drop it.
func (c Cookie) Expired(now time.Time) bool {
	return !c.Expires.After(now)
}

// ParseCookie reads a Set-Cookie header value back into a Cookie.
// Expiry is carried at one-second precision.
func ParseCookie(line string) (Cookie, error) {
	hc, err := http.ParseSetCookie(line)
	if err != nil {
		return Cookie{}, fmt.Errorf("parse set-cookie: %w", err)
	}
	return Cookie{
		Name:    hc.Name,
		Value:   hc.Value,
		Expires: hc.Expires.UTC(),
		Secure:  hc.Secure,
	}, nil
}

// expiredCookie tells the client to drop the named cookie.
func expiredCookie(name string, secure bool) Cookie {
	return Cookie{Name: name, Value: "", Expires: time.Unix(0, 0).UTC(), Secure: secure}
}
