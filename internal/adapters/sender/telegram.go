package sender

import (
	"bytes"
	"context"
	"fmt"
	"imgtool/internal/core/domain"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

const TelegramMessageLimit = 4096

//go:generate mockery --name TelegramBot

type TelegramBot interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
	SendDocument(ctx context.Context, params *bot.SendDocumentParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
}

// HandleReader gives access to the content behind a transient handle.
type HandleReader interface {
	Read(handle domain.Handle) ([]byte, error)
}

type Telegram struct {
	bot TelegramBot
}

func NewTelegram(bot TelegramBot) *Telegram {
	return &Telegram{bot: bot}
}

// SendMessageReply replies to message, splitting text into chunks Telegram accepts. It returns the ID of the
// last message sent.
func (s *Telegram) SendMessageReply(ctx context.Context, message *domain.Message, text string) (int, error) {
	var id int
	runes := []rune(text)

	for start := 0; ; start += TelegramMessageLimit {
		end := min(start+TelegramMessageLimit, len(runes))

		sent, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: message.ChatID,
			Text:   string(runes[start:end]),
			ReplyParameters: &models.ReplyParameters{
				MessageID: message.ID,
				ChatID:    message.ChatID,
			},
		})
		if err != nil {
			return id, err
		}
		id = sent.ID

		if end >= len(runes) {
			break
		}
	}

	return id, nil
}

// NewSurface creates the surface of one workflow in a chat.
func (s *Telegram) NewSurface(chatID int64, handles HandleReader) *ChatSurface {
	return &ChatSurface{telegram: s, handles: handles, chatID: chatID, ctx: context.Background()}
}

// ChatSurface renders workflow state as chat messages: a status message for the busy caption, plain
// replies for errors and a document for the result.
type ChatSurface struct {
	telegram *Telegram
	handles  HandleReader
	chatID   int64

	mu          sync.Mutex
	ctx         context.Context
	message     *domain.Message
	statusID    int
	sourceLabel string
}

func (c *ChatSurface) Bind(ctx context.Context, message *domain.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctx = ctx
	c.message = message
	c.statusID = 0
}

func (c *ChatSurface) target() (context.Context, *domain.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.message == nil {
		return c.ctx, &domain.Message{ChatID: c.chatID}
	}
	return c.ctx, c.message
}

func (c *ChatSurface) SetControlEnabled(enabled bool) {
	log.Debug().Int64("chatId", c.chatID).Bool("enabled", enabled).Msg("control toggled")
}

func (c *ChatSurface) ShowBusy(caption string) {
	ctx, message := c.target()

	c.mu.Lock()
	statusID := c.statusID
	c.mu.Unlock()

	if statusID == 0 {
		_, err := c.telegram.bot.SendChatAction(ctx, &bot.SendChatActionParams{
			ChatID: c.chatID,
			Action: models.ChatActionUploadDocument,
		})
		if err != nil {
			log.Warn().Err(err).Msg("error sending chat action")
		}

		id, err := c.telegram.SendMessageReply(ctx, message, caption)
		if err != nil {
			log.Error().Err(err).Msg(domain.ErrSendingReplyFailed.Error())
			return
		}

		c.mu.Lock()
		c.statusID = id
		c.mu.Unlock()
		return
	}

	_, err := c.telegram.bot.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    c.chatID,
		MessageID: statusID,
		Text:      caption,
	})
	if err != nil {
		log.Warn().Err(err).Int("statusId", statusID).Msg("failed to update status message")
	}
}

func (c *ChatSurface) HideBusy() {
	ctx, _ := c.target()

	c.mu.Lock()
	statusID := c.statusID
	c.statusID = 0
	c.mu.Unlock()

	if statusID == 0 {
		return
	}

	if _, err := c.telegram.bot.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    c.chatID,
		MessageID: statusID,
	}); err != nil {
		log.Warn().Err(err).Int("statusId", statusID).Msg("failed to delete status message")
	}
}

func (c *ChatSurface) ShowError(text string) {
	ctx, message := c.target()

	if _, err := c.telegram.SendMessageReply(ctx, message, text); err != nil {
		log.Error().Err(err).Msg(domain.ErrSendingReplyFailed.Error())
	}
}

// HideError is a no-op, sent messages stay in the chat history.
func (c *ChatSurface) HideError() {}

func (c *ChatSurface) ShowSource(source domain.Descriptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sourceLabel = source.SizeLabel
}

func (c *ChatSurface) ShowResult(result domain.Descriptor, filename string) {
	ctx, message := c.target()

	data, err := c.handles.Read(result.Handle)
	if err != nil {
		log.Error().Err(err).Str("handle", string(result.Handle)).Msg("failed to read result")
		return
	}

	c.mu.Lock()
	caption := fmt.Sprintf("%s (%s)", filename, result.SizeLabel)
	if c.sourceLabel != "" {
		caption = fmt.Sprintf("%s (%s, original %s)", filename, result.SizeLabel, c.sourceLabel)
	}
	c.mu.Unlock()

	_, err = c.telegram.bot.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:   c.chatID,
		Document: &models.InputFileUpload{Filename: filename, Data: bytes.NewReader(data)},
		Caption:  caption,
		ReplyParameters: &models.ReplyParameters{
			MessageID: message.ID,
			ChatID:    c.chatID,
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to send result document")
	}
}

// HideResult is a no-op, a sent document cannot be taken back.
func (c *ChatSurface) HideResult() {}

func (c *ChatSurface) HidePreview() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sourceLabel = ""
}
