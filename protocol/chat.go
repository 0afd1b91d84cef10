package protocol

// Chat keywords.
const (
	kwMessageFrom = "MESSAGE_FROM"
	kwMessage     = "MESSAGE"
)

// ChatEvent is an inbound chat sub-service event.
type ChatEvent interface {
	chatEvent()
}

// MessageFrom carries one chat line authored by a peer.
type MessageFrom struct {
	Author uint64
	Text   string
}

func (MessageFrom) chatEvent() {}

// ParseChatEvent decodes the argument tokens of a Chat service event.
func ParseChatEvent(toks []string) (ChatEvent, error) {
	if len(toks) == 0 {
		return nil, badCommand("")
	}
	keyword, rest := toks[0], toks[1:]

	switch keyword {
	case kwMessageFrom:
		a := newArgs(kwMessageFrom, rest)
		author := a.Uint64("authorUid")
		text := a.Rest("text")
		if err := a.End(); err != nil {
			return nil, err
		}
		return MessageFrom{Author: author, Text: text}, nil
	default:
		return nil, badCommand(keyword)
	}
}

// MessageArgs builds the argument tokens of an outbound chat message.
func MessageArgs(text string) []string {
	return append([]string{kwMessage}, Fields(text)...)
}
