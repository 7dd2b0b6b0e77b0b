// Package tgbot is the operator chat front-end: account registration and
// login over Telegram, plus read-only views of recent trade signals. It
// never places or cancels orders.
package tgbot

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"sarraf/internal/logger"
	"sarraf/internal/store"
	"sarraf/internal/types"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
)

const tokenEnvVar = "TELEGRAM_BOT_TOKEN"

// sender is the slice of the Telegram client the handlers need. Tests
// substitute a recorder.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type convState int

const (
	stateIdle convState = iota
	stateRegisterUsername
	stateRegisterPassword
	stateRegisterConfirm
	stateLoginPassword
)

type session struct {
	state    convState
	username string
	password string
	loggedIn bool
	isAdmin  bool
}

type Bot struct {
	api     sender
	client  *tgbotapi.BotAPI
	users   store.UserStore
	signals store.SignalStore

	mu       sync.Mutex
	sessions map[int64]*session
}

// NewFromEnv builds the bot with the token from TELEGRAM_BOT_TOKEN (a
// local .env file is honored). The token never lives in the config file.
func NewFromEnv(users store.UserStore, signals store.SignalStore) (*Bot, error) {
	_ = godotenv.Load()
	token := strings.TrimSpace(os.Getenv(tokenEnvVar))
	if token == "" {
		return nil, fmt.Errorf("%s is not set", tokenEnvVar)
	}
	client, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram connect failed: %w", err)
	}
	return &Bot{
		api:      client,
		client:   client,
		users:    users,
		signals:  signals,
		sessions: make(map[int64]*session),
	}, nil
}

// Run long-polls for updates until the context is canceled.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.client.GetUpdatesChan(cfg)
	logger.Infof("tgbot: connected as @%s", b.client.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.client.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	if strings.HasPrefix(text, "/") {
		b.handleCommand(ctx, msg, strings.ToLower(strings.Fields(text)[0]))
		return
	}
	b.handleConversation(ctx, msg, text)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, cmd string) {
	sess := b.session(msg.From.ID)
	switch cmd {
	case "/start", "/help":
		b.reply(msg.Chat.ID, helpText)
	case "/register":
		b.startRegistration(ctx, msg, sess)
	case "/login":
		b.startLogin(ctx, msg, sess)
	case "/logout":
		b.mu.Lock()
		delete(b.sessions, msg.From.ID)
		b.mu.Unlock()
		b.reply(msg.Chat.ID, "Logged out.")
	case "/signals":
		b.showSignals(ctx, msg, sess)
	case "/addkey":
		if !sess.loggedIn {
			b.reply(msg.Chat.ID, "Login required. Use /login.")
			return
		}
		// TODO: per-operator API keys once signals can carry an owner.
		b.reply(msg.Chat.ID, "API keys are configured server-side for now.")
	default:
		b.reply(msg.Chat.ID, "Unknown command. Send /help for the command list.")
	}
}

const helpText = `Commands:
/register - create an operator account
/login - sign in to an existing account
/logout - end the session
/signals - show recent trade signals (login required)
/addkey - store an exchange API key (login required)
/help - this message`

func (b *Bot) startRegistration(ctx context.Context, msg *tgbotapi.Message, sess *session) {
	if _, found, err := b.users.UserByTelegramID(ctx, msg.From.ID); err != nil {
		b.replyError(msg.Chat.ID, err)
		return
	} else if found {
		b.reply(msg.Chat.ID, "This Telegram account is already registered. Use /login.")
		return
	}
	sess.state = stateRegisterUsername
	b.reply(msg.Chat.ID, "Choose a username (3-32 letters, digits or underscores):")
}

func (b *Bot) startLogin(ctx context.Context, msg *tgbotapi.Message, sess *session) {
	user, found, err := b.users.UserByTelegramID(ctx, msg.From.ID)
	if err != nil {
		b.replyError(msg.Chat.ID, err)
		return
	}
	if !found {
		b.reply(msg.Chat.ID, "No account for this Telegram user. Use /register first.")
		return
	}
	sess.state = stateLoginPassword
	sess.username = user.Username
	b.reply(msg.Chat.ID, "Enter your password:")
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message, text string) {
	sess := b.session(msg.From.ID)
	switch sess.state {
	case stateRegisterUsername:
		b.stepRegisterUsername(ctx, msg, sess, text)
	case stateRegisterPassword:
		b.deleteMessage(msg)
		b.stepRegisterPassword(msg, sess, text)
	case stateRegisterConfirm:
		b.deleteMessage(msg)
		b.stepRegisterConfirm(ctx, msg, sess, text)
	case stateLoginPassword:
		b.deleteMessage(msg)
		b.stepLoginPassword(ctx, msg, sess, text)
	default:
		b.reply(msg.Chat.ID, "Send /help for the command list.")
	}
}

func (b *Bot) stepRegisterUsername(ctx context.Context, msg *tgbotapi.Message, sess *session, text string) {
	username := strings.TrimSpace(text)
	if !ValidUsername(username) {
		b.reply(msg.Chat.ID, "Invalid username, try again (3-32 letters, digits or underscores):")
		return
	}
	if _, found, err := b.users.UserByUsername(ctx, username); err != nil {
		b.replyError(msg.Chat.ID, err)
		return
	} else if found {
		b.reply(msg.Chat.ID, "That username is taken, choose another:")
		return
	}
	sess.username = username
	sess.state = stateRegisterPassword
	b.reply(msg.Chat.ID, "Choose a password (at least 6 characters). The message will be deleted:")
}

func (b *Bot) stepRegisterPassword(msg *tgbotapi.Message, sess *session, text string) {
	if len(text) < minPasswordLen {
		b.reply(msg.Chat.ID, "Password too short, try again:")
		return
	}
	sess.password = text
	sess.state = stateRegisterConfirm
	b.reply(msg.Chat.ID, "Repeat the password to confirm:")
}

func (b *Bot) stepRegisterConfirm(ctx context.Context, msg *tgbotapi.Message, sess *session, text string) {
	if text != sess.password {
		sess.state = stateRegisterPassword
		sess.password = ""
		b.reply(msg.Chat.ID, "Passwords do not match. Choose a password:")
		return
	}
	hash, err := HashPassword(sess.password)
	sess.password = ""
	if err != nil {
		b.replyError(msg.Chat.ID, err)
		sess.state = stateIdle
		return
	}
	count, err := b.users.CountUsers(ctx)
	if err != nil {
		b.replyError(msg.Chat.ID, err)
		sess.state = stateIdle
		return
	}
	user := store.BotUser{
		TelegramUserID: msg.From.ID,
		Username:       sess.username,
		HashedPassword: hash,
		// The first account to register administers the bot.
		IsAdmin: count == 0,
	}
	if _, err := b.users.CreateUser(ctx, user); err != nil {
		b.replyError(msg.Chat.ID, err)
		sess.state = stateIdle
		return
	}
	sess.state = stateIdle
	sess.loggedIn = true
	sess.isAdmin = user.IsAdmin
	logger.Infof("tgbot: registered operator %s (admin=%v)", user.Username, user.IsAdmin)
	b.reply(msg.Chat.ID, fmt.Sprintf("Account %s created, you are logged in.", user.Username))
}

func (b *Bot) stepLoginPassword(ctx context.Context, msg *tgbotapi.Message, sess *session, text string) {
	user, found, err := b.users.UserByTelegramID(ctx, msg.From.ID)
	if err != nil || !found {
		sess.state = stateIdle
		b.reply(msg.Chat.ID, "Login failed.")
		return
	}
	if !CheckPassword(user.HashedPassword, text) {
		b.reply(msg.Chat.ID, "Wrong password, try again:")
		return
	}
	sess.state = stateIdle
	sess.loggedIn = true
	sess.isAdmin = user.IsAdmin
	b.reply(msg.Chat.ID, fmt.Sprintf("Welcome back, %s.", user.Username))
}

func (b *Bot) showSignals(ctx context.Context, msg *tgbotapi.Message, sess *session) {
	if !sess.loggedIn {
		b.reply(msg.Chat.ID, "Login required. Use /login.")
		return
	}
	signals, err := b.signals.RecentSignals(ctx, 10)
	if err != nil {
		b.replyError(msg.Chat.ID, err)
		return
	}
	if len(signals) == 0 {
		b.reply(msg.Chat.ID, "No signals yet.")
		return
	}
	var sb strings.Builder
	sb.WriteString("Recent signals:\n")
	for _, sig := range signals {
		sb.WriteString(formatSignal(sig))
		sb.WriteByte('\n')
	}
	b.reply(msg.Chat.ID, sb.String())
}

func formatSignal(sig types.TradeSignal) string {
	return fmt.Sprintf("#%d %s %s entry=%s exit=%s",
		sig.ID, sig.AssetName, sig.Status, sig.EntryPrice, sig.ExitPrice)
}

func (b *Bot) session(userID int64) *session {
	b.mu.Lock()
	defer b.mu.Unlock()
	sess, ok := b.sessions[userID]
	if !ok {
		sess = &session{}
		b.sessions[userID] = sess
	}
	return sess
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logger.Warnf("tgbot: send failed: %v", err)
	}
}

func (b *Bot) replyError(chatID int64, err error) {
	logger.Errorf("tgbot: %v", err)
	b.reply(chatID, "Something went wrong, try again later.")
}

// deleteMessage removes a credential-bearing message from the chat.
func (b *Bot) deleteMessage(msg *tgbotapi.Message) {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(msg.Chat.ID, msg.MessageID)); err != nil {
		logger.Debugf("tgbot: delete message failed: %v", err)
	}
}
