package handler

import (
	"context"
	"fmt"
	"imgtool/internal/core/command"
	"imgtool/internal/core/domain"
	"imgtool/internal/core/port"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

// FileLocator resolves Telegram file IDs to download links.
type FileLocator interface {
	GetFile(ctx context.Context, params *bot.GetFileParams) (*models.File, error)
	FileDownloadLink(f *models.File) string
}

type Command struct {
	commandRegistry port.CommandRegistry
	files           FileLocator
	wg              sync.WaitGroup
}

func NewCommand(commandRegistry port.CommandRegistry, files FileLocator) *Command {
	return &Command{commandRegistry: commandRegistry, files: files}
}

// Handle dispatches a command message to its registered handler. The handler runs on its own goroutine so
// a long submission does not hold up updates of other chats.
func (c *Command) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	message := update.Message

	text := message.Text
	if text == "" {
		text = message.Caption
	}

	log.Debug().Str("message", text).Str("user", getUserNameFromMessage(message.From)).Msg("received command")

	cmd := command.ParseCommand(text)
	commandHandler, err := c.commandRegistry.Get(cmd)
	if err != nil {
		log.Debug().Str("command", cmd).Msg("no handler for command")
		return
	}

	msg := &domain.Message{
		ID:     message.ID,
		ChatID: message.Chat.ID,
		Text:   text,
	}

	if err := c.attachImage(ctx, message, msg); err != nil {
		log.Error().Err(err).Msg("error getting file from telegram api")
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		if err := commandHandler.Respond(ctx, msg); err != nil {
			log.Err(err).Str("command", cmd).Msg("failed to respond to command")
		}
	}()
}

// Wait blocks until every dispatched command has returned.
func (c *Command) Wait() {
	c.wg.Wait()
}

type attachment struct {
	fileID string
	name   string
	size   int64
}

func (c *Command) attachImage(ctx context.Context, message *models.Message, msg *domain.Message) error {
	a, ok := findImage(message)
	if !ok && message.ReplyToMessage != nil {
		a, ok = findImage(message.ReplyToMessage)
	}
	if !ok {
		return nil
	}

	f, err := c.files.GetFile(ctx, &bot.GetFileParams{FileID: a.fileID})
	if err != nil {
		return fmt.Errorf("could not resolve file %s: %w", a.fileID, err)
	}

	msg.FileURL = c.files.FileDownloadLink(f)
	msg.FileName = a.name
	msg.FileSize = a.size
	if msg.FileSize == 0 {
		msg.FileSize = f.FileSize
	}

	return nil
}

func findImage(message *models.Message) (attachment, bool) {
	if message.Document != nil {
		name := message.Document.FileName
		if name == "" {
			name = "document_" + message.Document.FileUniqueID
		}
		return attachment{fileID: message.Document.FileID, name: name, size: message.Document.FileSize}, true
	}

	if len(message.Photo) == 0 {
		return attachment{}, false
	}

	photo := findLargestImage(message.Photo)
	return attachment{
		fileID: photo.FileID,
		name:   "photo_" + photo.FileUniqueID + ".jpg",
		size:   int64(photo.FileSize),
	}, true
}

// findLargestImage picks the original resolution, Telegram lists sizes in ascending order.
func findLargestImage(photos []models.PhotoSize) models.PhotoSize {
	largest := photos[len(photos)-1]
	for _, photo := range photos {
		if photo.Width*photo.Height > largest.Width*largest.Height {
			largest = photo
		}
	}

	return largest
}

func getUserNameFromMessage(user *models.User) string {
	if user == nil {
		return ""
	}

	if user.Username == "" {
		return user.FirstName
	}

	return "@" + user.Username
}
