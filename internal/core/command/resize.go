package command

import (
	"context"
	"fmt"
	"imgtool/internal/core/domain"
	"imgtool/internal/core/port"
	"imgtool/internal/core/service"

	"github.com/rs/zerolog/log"
)

type Resize struct {
	sessions   *service.Sessions
	fetcher    port.FileFetcher
	textSender port.TextSender
	command    string
}

func NewResize(sessions *service.Sessions, fetcher port.FileFetcher, textSender port.TextSender,
	command string) *Resize {
	return &Resize{sessions: sessions, fetcher: fetcher, textSender: textSender, command: command}
}

func (r *Resize) GetCommand() string {
	return r.command
}

func (r *Resize) Respond(ctx context.Context, message *domain.Message) error {
	l := log.With().
		Int("messageId", message.ID).
		Int64("chatId", message.ChatID).
		Str("command", r.GetCommand()).
		Logger()

	l.Info().Msg("handling request")

	session := r.sessions.Get(message.ChatID)

	release, ok := session.AcquireResize()
	if !ok {
		return r.reply(ctx, message, "A resize is already in progress, please wait for it to finish.")
	}
	defer release()

	file, err := loadFile(ctx, r.fetcher, message)
	if err != nil {
		l.Error().Err(err).Msg("could not load image")
		return r.reply(ctx, message, fmt.Sprintf("Error: %s", err))
	}

	session.ResizeSurface.Bind(ctx, message)

	if err := session.Resize.Select(file); err != nil {
		l.Warn().Err(err).Msg("source preview failed")
	}

	err = session.Resize.Submit(ctx, file, ParseCommandArgs(message.Text))
	if err != nil {
		l.Debug().Err(err).Msg("resize did not succeed")
	}

	return nil
}

func (r *Resize) reply(ctx context.Context, message *domain.Message, text string) error {
	if _, err := r.textSender.SendMessageReply(ctx, message, text); err != nil {
		log.Error().Err(err).Msg(domain.ErrSendingReplyFailed.Error())
		return err
	}
	return nil
}
