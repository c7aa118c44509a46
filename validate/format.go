package validate

import (
	"fmt"
	"net/mail"
	"net/netip"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// checkFormat validates a string against a named format, returning "" on
// success or when the format is unknown (2020-12 treats unknown formats as
// annotations).
func checkFormat(format, s string) string {
	switch format {
	case "date-time":
		if _, err := time.Parse(time.RFC3339, s); err != nil {
			return fmt.Sprintf("%q is not an RFC 3339 date-time", s)
		}
	case "date":
		if _, err := time.Parse("2006-01-02", s); err != nil {
			return fmt.Sprintf("%q is not a full-date", s)
		}
	case "time":
		if _, err := time.Parse("15:04:05Z07:00", s); err != nil {
			return fmt.Sprintf("%q is not a full-time", s)
		}
	case "duration":
		if !durationRe.MatchString(s) {
			return fmt.Sprintf("%q is not an ISO 8601 duration", s)
		}
	case "email":
		addr, err := mail.ParseAddress(s)
		if err != nil || addr.Address != s {
			return fmt.Sprintf("%q is not an email address", s)
		}
	case "uri":
		u, err := url.Parse(s)
		if err != nil || !u.IsAbs() {
			return fmt.Sprintf("%q is not an absolute URI", s)
		}
	case "uri-reference":
		if _, err := url.Parse(s); err != nil {
			return fmt.Sprintf("%q is not a URI reference", s)
		}
	case "uuid":
		if !uuidRe.MatchString(s) {
			return fmt.Sprintf("%q is not a UUID", s)
		}
	case "ipv4":
		a, err := netip.ParseAddr(s)
		if err != nil || !a.Is4() {
			return fmt.Sprintf("%q is not an IPv4 address", s)
		}
	case "ipv6":
		a, err := netip.ParseAddr(s)
		if err != nil || !a.Is6() || a.Is4() {
			return fmt.Sprintf("%q is not an IPv6 address", s)
		}
	case "hostname":
		if !isHostname(s) {
			return fmt.Sprintf("%q is not a hostname", s)
		}
	case "regex":
		if _, err := regexp.Compile(s); err != nil {
			return fmt.Sprintf("%q is not a valid regular expression", s)
		}
	case "json-pointer":
		if s != "" && !strings.HasPrefix(s, "/") {
			return fmt.Sprintf("%q is not a JSON Pointer", s)
		}
	}
	return ""
}

var (
	uuidRe     = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	durationRe = regexp.MustCompile(`^P(\d+Y)?(\d+M)?(\d+W)?(\d+D)?(T(\d+H)?(\d+M)?(\d+(\.\d+)?S)?)?$`)
	labelRe    = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?$`)
)

func isHostname(s string) bool {
	if len(s) == 0 || len(s) > 253 {
		return false
	}
	s = strings.TrimSuffix(s, ".")
	for _, label := range strings.Split(s, ".") {
		if len(label) == 0 || len(label) > 63 || !labelRe.MatchString(label) {
			return false
		}
	}
	return true
}
