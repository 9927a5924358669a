package bot

import (
	"context"
	"fmt"
	"strconv"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"
)

// Handler connects Commands to a Telegram bot.
type Handler struct {
	bot      *tgbot.Bot
	commands *Commands
	log      logrus.FieldLogger
}

// NewHandler creates a new bot handler instance.
func NewHandler(token string, commands *Commands, logger logrus.FieldLogger) (*Handler, error) {
	log := logger.WithField("component", "bot_handler")

	h := &Handler{
		commands: commands,
		log:      log,
	}
	b, err := tgbot.New(token, tgbot.WithDefaultHandler(h.defaultHandler))
	if err != nil {
		log.WithError(err).Error("Failed to create Telegram bot instance")
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	h.bot = b
	h.registerHandlers()

	log.Info("Telegram bot handler initialized")
	return h, nil
}

// registerHandlers sets up one handler per command.
func (h *Handler) registerHandlers() {
	for _, name := range h.commands.Names() {
		h.bot.RegisterHandler(tgbot.HandlerTypeMessageText, name, tgbot.MatchTypePrefix, h.commandHandler)
		h.log.WithField("command", name).Debug("Registered command handler")
	}
}

// Start begins polling for updates from Telegram.
// This function blocks until the context is cancelled.
func (h *Handler) Start(ctx context.Context) {
	h.log.Info("Starting Telegram bot polling...")
	h.bot.Start(ctx)
	h.log.Info("Telegram bot polling stopped.")
}

func (h *Handler) commandHandler(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	userID := strconv.FormatInt(update.Message.From.ID, 10)
	reply := h.commands.Execute(ctx, userID, update.Message.Text)
	h.send(ctx, b, update.Message.Chat.ID, reply)
}

func (h *Handler) defaultHandler(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.log.WithFields(logrus.Fields{
		"chat_id": update.Message.Chat.ID,
		"text":    update.Message.Text,
	}).Debug("Received unhandled message (default handler)")
	h.send(ctx, b, update.Message.Chat.ID, "Send /help to see what I can do.")
}

func (h *Handler) send(ctx context.Context, b *tgbot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.log.WithError(err).WithField("chat_id", chatID).Error("Failed to send message")
	}
}
