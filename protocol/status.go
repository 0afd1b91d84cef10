package protocol

// Status keywords.
const (
	kwCheckout     = "CHECKOUT"
	kwAvailability = "AVAILABILITY"
)

// Availability is a server's occupancy snapshot: Current participants out of
// Capacity seats.
type Availability struct {
	Current  int `json:"current"`
	Capacity int `json:"capacity"`
}

// ParseStatusEvent decodes the argument tokens of a Status service event.
func ParseStatusEvent(toks []string) (Availability, error) {
	if len(toks) == 0 {
		return Availability{}, badCommand("")
	}
	keyword, rest := toks[0], toks[1:]
	if keyword != kwAvailability {
		return Availability{}, badCommand(keyword)
	}
	a := newArgs(kwAvailability, rest)
	av := Availability{Current: a.Int("current"), Capacity: a.Int("capacity")}
	if err := a.End(); err != nil {
		return Availability{}, err
	}
	return av, nil
}

// CheckoutArgs builds the argument tokens of an outbound checkout request.
func CheckoutArgs() []string {
	return []string{kwCheckout}
}
