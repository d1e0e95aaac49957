package away

import (
	"regexp"
	"strings"
)

var (
	reHandle = regexp.MustCompile(`^@?\w+$`)
	rePhone  = regexp.MustCompile(`^\+?\d+$`)
	reRawID  = regexp.MustCompile(`^\d+$`)
)

// NormalizeHandle lowercases h and ensures a single leading "@".
func NormalizeHandle(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.TrimLeft(h, "@")
	if h == "" {
		return ""
	}
	return "@" + h
}

// NormalizePhone keeps the digits of p behind a leading "+".
func NormalizePhone(p string) string {
	var b strings.Builder
	for _, r := range p {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "+" + b.String()
}

// ParseIdentifier normalizes an owner-supplied "@handle" or "+phone" token.
// Bare digits count as a phone only with the leading "+"; without it they
// are a raw platform user ID, the identifier of senders that have neither
// handle nor phone.
func ParseIdentifier(tok string) (string, bool) {
	tok = strings.TrimSpace(tok)
	switch {
	case strings.HasPrefix(tok, "+") && rePhone.MatchString(tok):
		return NormalizePhone(tok), true
	case strings.HasPrefix(tok, "@") && reHandle.MatchString(tok):
		return NormalizeHandle(tok), true
	case reRawID.MatchString(tok):
		return tok, true
	}
	return "", false
}

// Sender is the identity of the author of an inbound message, as reported
// by the transport.
type Sender struct {
	ID       string // raw platform identifier
	Username string // with or without the leading "@"
	Phone    string
	IsUser   bool // false for bots, channels and system accounts
}

// Handle returns the normalized handle, or "" when the sender has none.
func (s Sender) Handle() string {
	return NormalizeHandle(s.Username)
}

// Identifier returns the key used for counters and exceptions: the handle,
// else the phone, else the raw ID.
func (s Sender) Identifier() string {
	if h := s.Handle(); h != "" {
		return h
	}
	if p := NormalizePhone(s.Phone); p != "" {
		return p
	}
	return s.ID
}
