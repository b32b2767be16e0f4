package protocol

import (
	"strings"
	"unicode/utf8"
)

const upperhex = "0123456789ABCDEF"

// shouldEscape reports whether b is outside the safe set
func shouldEscape(b byte) bool {
	return b <= ' ' || b == '%' || b >= 0x7F
}

// Escape percent-encodes s
func Escape(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if shouldEscape(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldEscape(c) {
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&0x0F])
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Unescape decodes %XX sequences. Malformed sequences are kept verbatim
// and invalid UTF-8 in the result becomes U+FFFD, so it never fails.
func Unescape(s string) string {
	if strings.IndexByte(s, '%') < 0 {
		return strings.ToValidUTF8(s, string(utf8.RuneError))
	}

	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '%' && i+2 < len(s) {
			hi, okHi := unhex(s[i+1])
			lo, okLo := unhex(s[i+2])
			if okHi && okLo {
				buf = append(buf, hi<<4|lo)
				i += 2
				continue
			}
		}
		buf = append(buf, c)
	}
	return strings.ToValidUTF8(string(buf), string(utf8.RuneError))
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// Encode builds one protocol line without the trailing newline
func Encode(command string, args ...string) string {
	if len(args) == 0 {
		return command
	}
	var b strings.Builder
	b.WriteString(command)
	for _, arg := range args {
		b.WriteByte(' ')
		b.WriteString(Escape(arg))
	}
	return b.String()
}

// Decode splits a line into its verb and decoded arguments. A blank line
// yields an empty verb and no arguments.
func Decode(line string) (string, []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	args := make([]string, 0, len(fields)-1)
	for _, field := range fields[1:] {
		args = append(args, Unescape(field))
	}
	return fields[0], args
}
