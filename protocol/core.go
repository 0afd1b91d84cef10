package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Core message keywords.
const (
	kwLogin        = "LOGIN"
	kwRegistration = "REGISTRATION"
	kwLoggedIn     = "LOGGED_IN"
	kwLoggedOut    = "LOGGED_OUT"
	kwInterrupt    = "INTERRUPT"
	kwService      = "SERVICE"
	kwRequest      = "REQUEST"
	kwEvent        = "EVENT"
)

// Peer identifies one participant of a session.
type Peer struct {
	UID  uint64 `json:"uid"`
	Name string `json:"name"`
}

func (p Peer) String() string {
	return fmt.Sprintf("%s#%d", p.Name, p.UID)
}

// Message is a core session message received from the server. The concrete
// types are Registration, LoggedIn, LoggedOut, Interrupt and ServiceEvent.
type Message interface {
	message()
}

// Registration is the successful handshake response. Self is the local peer;
// Peers lists every other participant registered at that moment.
type Registration struct {
	Self  Peer
	Peers []Peer
}

// LoggedIn announces a peer joining the session.
type LoggedIn struct {
	Peer Peer
}

// LoggedOut announces a peer leaving the session.
type LoggedOut struct {
	UID uint64
}

// Interrupt is the server's graceful close notice.
type Interrupt struct{}

// ServiceEvent is an inbound sub-service line. Args is the unparsed remainder
// of the line; the addressed sub-service owns its grammar.
type ServiceEvent struct {
	Service string
	Args    []string
}

func (Registration) message() {}
func (LoggedIn) message()     {}
func (LoggedOut) message()    {}
func (Interrupt) message()    {}
func (ServiceEvent) message() {}

// ParseMessage decodes one inbound wire line into a core Message.
func ParseMessage(line string) (Message, error) {
	toks := Fields(line)
	if len(toks) == 0 {
		return nil, &ParseError{Keyword: "", Err: ErrMalformed}
	}
	keyword, rest := toks[0], toks[1:]

	switch keyword {
	case kwRegistration:
		return parseRegistration(rest)

	case kwLoggedIn:
		a := newArgs(kwLoggedIn, rest)
		peer := Peer{UID: a.Uint64("uid"), Name: a.String("name")}
		if err := a.End(); err != nil {
			return nil, err
		}
		return LoggedIn{Peer: peer}, nil

	case kwLoggedOut:
		a := newArgs(kwLoggedOut, rest)
		uid := a.Uint64("uid")
		if err := a.End(); err != nil {
			return nil, err
		}
		return LoggedOut{UID: uid}, nil

	case kwInterrupt:
		a := newArgs(kwInterrupt, rest)
		if err := a.End(); err != nil {
			return nil, err
		}
		return Interrupt{}, nil

	case kwService:
		a := newArgs(kwService, rest)
		a.Enum("kind", kwEvent)
		service := a.String("serviceName")
		if a.err != nil {
			return nil, a.err
		}
		return ServiceEvent{Service: service, Args: rest[a.pos:]}, nil

	default:
		return nil, badCommand(keyword)
	}
}

// parseRegistration reads the (uid, name) pair list; the first pair is the
// local peer.
func parseRegistration(toks []string) (Message, error) {
	a := newArgs(kwRegistration, toks)
	self := Peer{UID: a.Uint64("uid"), Name: a.String("name")}
	var peers []Peer
	for a.err == nil && a.pos < len(toks) {
		peers = append(peers, Peer{UID: a.Uint64("uid"), Name: a.String("name")})
	}
	if err := a.End(); err != nil {
		return nil, err
	}
	return Registration{Self: self, Peers: peers}, nil
}

// EncodeLogin builds the handshake request line.
func EncodeLogin(uid uint64, name string) string {
	return kwLogin + " " + strconv.FormatUint(uid, 10) + " " + name
}

// EncodeServiceRequest builds a sub-service request line carrying seq and the
// sub-service's own argument tokens.
func EncodeServiceRequest(seq uint64, service string, serviceArgs ...string) string {
	parts := append([]string{kwService, kwRequest, strconv.FormatUint(seq, 10), service}, serviceArgs...)
	return strings.Join(parts, " ")
}
