package gateway

// Gateway delivers messages to a chat identity. Implementations are
// fire-and-log: a returned error is recorded by the caller, never used
// for control flow beyond skipping bookkeeping for that one send.
type Gateway interface {
	SendText(chatID, text string) error
	SendPhoto(chatID, photoRef, caption string) error
}
