// Package service multiplexes named sub-services over one registered
// session.
//
// The service package implements:
//   - A per-session request sequence counter shared by all sub-services
//   - Demultiplexing of inbound SERVICE EVENT lines by service name
//   - Typed facades for the Chat, Lobby, Minigame and Status sub-services
//   - One shared error stream for every protocol violation
//
// Addressing:
//
// Outbound requests are framed as SERVICE REQUEST <seq> <name> <args...>,
// where seq starts at 0 for each session and increases strictly in send
// order regardless of which sub-service sends. Inbound lines are routed
// purely by service name; each sub-service interprets the remainder of the
// line as its own grammar.
//
// Errors:
//
// An unknown command keyword or a type mismatch inside a sub-service's
// grammar is published on the mux error stream and stops that sub-service's
// interpretation of the stream until a new session begins. The transport and
// sibling sub-services are unaffected.
//
// Usage:
//
//	mux := service.NewMux(machine)
//	chat, _ := service.NewChat(mux)
//	cancel := chat.Events().Subscribe(func(ev protocol.ChatEvent) {
//		if msg, ok := ev.(protocol.MessageFrom); ok {
//			log.Printf("<%d> %s", msg.Author, msg.Text)
//		}
//	})
//	defer cancel()
//	if err := chat.Say("hello"); err != nil {
//		log.Print(err)
//	}
package service
