package command

import (
	"context"
	"fmt"
	"imgtool/internal/core/domain"
	"imgtool/internal/core/port"
	"imgtool/internal/core/service"
	"strings"

	"github.com/rs/zerolog/log"
)

type Convert struct {
	sessions   *service.Sessions
	fetcher    port.FileFetcher
	textSender port.TextSender
	command    string
}

func NewConvert(sessions *service.Sessions, fetcher port.FileFetcher, textSender port.TextSender,
	command string) *Convert {
	return &Convert{sessions: sessions, fetcher: fetcher, textSender: textSender, command: command}
}

func (c *Convert) GetCommand() string {
	return c.command
}

func (c *Convert) usage() string {
	formats := make([]string, len(domain.Formats))
	for i, f := range domain.Formats {
		formats[i] = string(f)
	}
	return fmt.Sprintf("usage: %s <%s>, as reply to an image", c.command, strings.Join(formats, "|"))
}

func (c *Convert) Respond(ctx context.Context, message *domain.Message) error {
	l := log.With().
		Int("messageId", message.ID).
		Int64("chatId", message.ChatID).
		Str("command", c.GetCommand()).
		Logger()

	l.Info().Msg("handling request")

	format, err := domain.ParseFormat(ParseCommandArgs(message.Text))
	if err != nil {
		l.Debug().Err(err).Msg("invalid format")
		return c.reply(ctx, message, c.usage())
	}

	session := c.sessions.Get(message.ChatID)

	release, ok := session.AcquireConvert()
	if !ok {
		return c.reply(ctx, message, "A conversion is already in progress, please wait for it to finish.")
	}
	defer release()

	file, err := loadFile(ctx, c.fetcher, message)
	if err != nil {
		l.Error().Err(err).Msg("could not load image")
		return c.reply(ctx, message, fmt.Sprintf("Error: %s", err))
	}

	session.ConvertSurface.Bind(ctx, message)

	err = session.Convert.Submit(ctx, file, format)
	if err != nil {
		l.Debug().Err(err).Msg("conversion did not succeed")
	}

	return nil
}

func (c *Convert) reply(ctx context.Context, message *domain.Message, text string) error {
	if _, err := c.textSender.SendMessageReply(ctx, message, text); err != nil {
		log.Error().Err(err).Msg(domain.ErrSendingReplyFailed.Error())
		return err
	}
	return nil
}
