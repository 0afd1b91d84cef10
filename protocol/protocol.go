package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Well-known sub-service names.
const (
	ServiceChat     = "Chat"
	ServiceLobby    = "Lobby"
	ServiceMinigame = "Minigame"
	ServiceStatus   = "Status"
)

var (
	// ErrBadCommand reports an unrecognized command keyword.
	ErrBadCommand = errors.New("bad command")

	// ErrMalformed reports a line whose arguments do not match the
	// command's schema.
	ErrMalformed = errors.New("malformed message")
)

// ParseError describes why a line was rejected: which keyword was being
// parsed, which field failed, and the offending token.
type ParseError struct {
	Keyword string
	Field   string
	Token   string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %v", e.Keyword, e.Err)
	}
	return fmt.Sprintf("%s: field %s: %v (token %q)", e.Keyword, e.Field, e.Err, e.Token)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Fields splits a wire line into its tokens. Empty tokens produced by runs of
// whitespace are dropped, matching the tolerant splitting servers perform.
func Fields(line string) []string {
	return strings.Fields(line)
}

// args scans one command's positional arguments against its fixed schema.
// Each accessor consumes the next token and records a *ParseError on the
// first failure; subsequent accessors become no-ops so parse functions can
// read every field and check the error once.
type args struct {
	keyword string
	toks    []string
	pos     int
	err     error
}

func newArgs(keyword string, toks []string) *args {
	return &args{keyword: keyword, toks: toks}
}

func (a *args) fail(field, token string, err error) {
	if a.err == nil {
		a.err = &ParseError{Keyword: a.keyword, Field: field, Token: token, Err: err}
	}
}

func (a *args) next(field string) (string, bool) {
	if a.err != nil {
		return "", false
	}
	if a.pos >= len(a.toks) {
		a.fail(field, "", ErrMalformed)
		return "", false
	}
	tok := a.toks[a.pos]
	a.pos++
	return tok, true
}

// Uint64 consumes the next token as a 64-bit unsigned integer.
func (a *args) Uint64(field string) uint64 {
	tok, ok := a.next(field)
	if !ok {
		return 0
	}
	v, err := strconv.ParseUint(tok, 10, 64)
	if err != nil {
		a.fail(field, tok, ErrMalformed)
		return 0
	}
	return v
}

// Int consumes the next token as a signed integer.
func (a *args) Int(field string) int {
	tok, ok := a.next(field)
	if !ok {
		return 0
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		a.fail(field, tok, ErrMalformed)
		return 0
	}
	return v
}

// String consumes the next token verbatim.
func (a *args) String(field string) string {
	tok, _ := a.next(field)
	return tok
}

// Enum consumes the next token and requires it to be one of allowed.
func (a *args) Enum(field string, allowed ...string) string {
	tok, ok := a.next(field)
	if !ok {
		return ""
	}
	for _, want := range allowed {
		if tok == want {
			return tok
		}
	}
	a.fail(field, tok, ErrMalformed)
	return ""
}

// Rest consumes every remaining token as a single space-joined string.
func (a *args) Rest(field string) string {
	if a.err != nil {
		return ""
	}
	rest := strings.Join(a.toks[a.pos:], " ")
	a.pos = len(a.toks)
	return rest
}

// End requires that every token has been consumed.
func (a *args) End() error {
	if a.err == nil && a.pos < len(a.toks) {
		a.fail("", a.toks[a.pos], ErrMalformed)
	}
	return a.err
}

func badCommand(keyword string) error {
	return &ParseError{Keyword: keyword, Err: ErrBadCommand}
}
