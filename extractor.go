package chargeauth

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mssola/useragent"
)

// TokenName is the cookie and header name carrying the session token.
const TokenName = "SessionToken"

// DeviceInfo contains device information extracted from an HTTP request.
// It feeds the login audit log; it is never persisted with the session.
type DeviceInfo struct {
	IP         string
	UserAgent  string
	Browser    string
	OS         string
	DeviceType string // mobile, desktop, tablet, bot
}

// ExtractToken returns the session token from a request: the first cookie
// named SessionToken wins, then the SessionToken header. Empty when neither
// is present.
func ExtractToken(r *http.Request) string {
	for _, c := range r.Cookies() {
		if c.Name == TokenName && c.Value != "" {
			return c.Value
		}
	}
	return r.Header.Get(TokenName)
}

// WriteSessionCookie emits the session cookie with the token and its
// absolute UTC expiry. Called by the API layer after session creation.
func WriteSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt.UTC(),
		HttpOnly: true,
	})
}

// ClearSessionCookie emits an immediately-expired session cookie. Called on
// logout regardless of whether a token was supplied.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// ExtractDeviceInfo extracts device information from an HTTP request.
func ExtractDeviceInfo(r *http.Request) DeviceInfo {
	ua := r.UserAgent()
	ip := extractIP(r)

	parsed := useragent.New(ua)
	browser, browserVersion := parsed.Browser()
	if browserVersion != "" {
		browser = browser + " " + browserVersion
	}

	osInfo := parsed.OSInfo()
	os := osInfo.Name
	if osInfo.Version != "" {
		os = os + " " + osInfo.Version
	}

	deviceType := "desktop"
	if parsed.Mobile() {
		deviceType = "mobile"
	} else if parsed.Bot() {
		deviceType = "bot"
	} else if isTablet(ua) {
		deviceType = "tablet"
	}

	return DeviceInfo{
		IP:         ip,
		UserAgent:  ua,
		Browser:    browser,
		OS:         os,
		DeviceType: deviceType,
	}
}

// extractIP extracts the client IP from an HTTP request. It checks common
// proxy headers first, then falls back to RemoteAddr.
func extractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			ip := strings.TrimSpace(ips[0])
			if isValidIP(ip) {
				return ip
			}
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		ip := strings.TrimSpace(xri)
		if isValidIP(ip) {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port
		return r.RemoteAddr
	}
	return host
}

func isValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}

// isTablet checks if the user agent indicates a tablet device.
func isTablet(ua string) bool {
	ua = strings.ToLower(ua)
	tabletKeywords := []string{"ipad", "tablet", "playbook", "silk"}
	for _, keyword := range tabletKeywords {
		if strings.Contains(ua, keyword) {
			return true
		}
	}
	return false
}
