package command

import (
	"context"
	"fmt"
	"imgtool/internal/core/domain"
	"imgtool/internal/core/port"
	"imgtool/internal/core/service"

	"github.com/rs/zerolog/log"
)

type Status struct {
	sessions   *service.Sessions
	textSender port.TextSender
	command    string
}

func NewStatus(sessions *service.Sessions, textSender port.TextSender, command string) *Status {
	return &Status{sessions: sessions, textSender: textSender, command: command}
}

func (s *Status) GetCommand() string {
	return s.command
}

const statusTemplate = `resize: %s
convert: %s
target size: %d-%d KB
`

func (s *Status) Respond(ctx context.Context, message *domain.Message) error {
	log.Info().
		Int("messageId", message.ID).
		Int64("chatId", message.ChatID).
		Str("command", s.GetCommand()).
		Msg("handling request")

	resize, convert, _ := s.sessions.Phases(message.ChatID)

	_, err := s.textSender.SendMessageReply(ctx, message,
		fmt.Sprintf(statusTemplate, resize, convert, domain.MinTargetSizeKB, domain.MaxTargetSizeKB))
	if err != nil {
		return err
	}

	return nil
}
