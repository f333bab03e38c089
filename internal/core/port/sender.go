package port

import (
	"context"
	"imgtool/internal/core/domain"
)

type TextSender interface {
	// SendMessageReply sends a reply to a specified message with the given text and returns the sent message ID and
	// an error if any.
	SendMessageReply(ctx context.Context, message *domain.Message, text string) (int, error)
}

// ChatSurface is a Surface living in a chat. It replies to the message it was last bound to.
type ChatSurface interface {
	Surface
	// Bind attaches the surface to the message being handled, ctx is used for every call until the next Bind.
	Bind(ctx context.Context, message *domain.Message)
}
