// Package proto implements the line-oriented chat protocol: parsing of
// inbound command lines and the exact text of every server line.
package proto

import "strings"

// DefaultPort is the TCP port the chat protocol is served on.
const DefaultPort = 49161

// MaxLineLength bounds one inbound line, terminator excluded.
const MaxLineLength = 64 * 1024

// RequestType identifies what an inbound line asks for.
type RequestType int

const (
	RequestChat RequestType = iota
	RequestCreate
	RequestJoin
	RequestLeave
	RequestList
	RequestKick
)

// Request is a parsed inbound line. Arg holds the text after the command
// prefix, or the whole line for chat.
type Request struct {
	Type RequestType
	Arg  string
}

// Prefixes are matched in order, so the more specific ones come first.
var prefixes = []struct {
	prefix string
	typ    RequestType
}{
	{"/create ", RequestCreate},
	{"/join ", RequestJoin},
	{"/leave", RequestLeave},
	{"/list", RequestList},
	{"/kick ", RequestKick},
}

// ParseLine maps a line, already stripped of its terminator, to a request.
// Matching is case-sensitive; anything unrecognised is chat.
func ParseLine(line string) Request {
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(line, p.prefix); ok {
			return Request{Type: p.typ, Arg: rest}
		}
	}
	return Request{Type: RequestChat, Arg: line}
}

// TrimLine removes a trailing LF and a CR right before it.
func TrimLine(raw string) string {
	raw = strings.TrimSuffix(raw, "\n")
	return strings.TrimSuffix(raw, "\r")
}
