package tgbot

import (
	"context"
	"testing"

	"sarraf/internal/store/gormstore"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent    []string
	deleted int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m.Text)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if _, ok := c.(tgbotapi.DeleteMessageConfig); ok {
		f.deleted++
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func newTestBot(t *testing.T) (*Bot, *fakeSender, *gormstore.GormStore) {
	t.Helper()
	st, err := gormstore.NewMemoryStore()
	require.NoError(t, err)
	sender := &fakeSender{}
	bot := &Bot{
		api:      sender,
		users:    st,
		signals:  st,
		sessions: make(map[int64]*session),
	}
	return bot, sender, st
}

func update(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			MessageID: 1,
			Text:      text,
			From:      &tgbotapi.User{ID: userID},
			Chat:      &tgbotapi.Chat{ID: userID, Type: "private"},
		},
	}
}

func TestRegistrationFlow(t *testing.T) {
	bot, sender, st := newTestBot(t)
	ctx := context.Background()

	bot.handleUpdate(ctx, update(7, "/register"))
	bot.handleUpdate(ctx, update(7, "alice_1"))
	bot.handleUpdate(ctx, update(7, "hunter22"))
	bot.handleUpdate(ctx, update(7, "hunter22"))

	user, found, err := st.UserByUsername(ctx, "alice_1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(7), user.TelegramUserID)
	assert.True(t, user.IsAdmin, "first registered user administers the bot")
	assert.True(t, CheckPassword(user.HashedPassword, "hunter22"))

	// Both password messages were deleted from the chat.
	assert.Equal(t, 2, sender.deleted)
	assert.Contains(t, sender.sent[len(sender.sent)-1], "logged in")
}

func TestSecondUserIsNotAdmin(t *testing.T) {
	bot, _, st := newTestBot(t)
	ctx := context.Background()

	for i, name := range []string{"first_op", "second_op"} {
		uid := int64(100 + i)
		bot.handleUpdate(ctx, update(uid, "/register"))
		bot.handleUpdate(ctx, update(uid, name))
		bot.handleUpdate(ctx, update(uid, "hunter22"))
		bot.handleUpdate(ctx, update(uid, "hunter22"))
	}

	second, found, err := st.UserByUsername(ctx, "second_op")
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, second.IsAdmin)
}

func TestPasswordMismatchRestartsPasswordStep(t *testing.T) {
	bot, sender, st := newTestBot(t)
	ctx := context.Background()

	bot.handleUpdate(ctx, update(7, "/register"))
	bot.handleUpdate(ctx, update(7, "alice_1"))
	bot.handleUpdate(ctx, update(7, "hunter22"))
	bot.handleUpdate(ctx, update(7, "different"))

	_, found, err := st.UserByUsername(ctx, "alice_1")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Contains(t, sender.sent[len(sender.sent)-1], "do not match")

	// Flow recovers from the password step.
	bot.handleUpdate(ctx, update(7, "hunter22"))
	bot.handleUpdate(ctx, update(7, "hunter22"))
	_, found, err = st.UserByUsername(ctx, "alice_1")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestLoginFlow(t *testing.T) {
	bot, sender, _ := newTestBot(t)
	ctx := context.Background()

	bot.handleUpdate(ctx, update(7, "/register"))
	bot.handleUpdate(ctx, update(7, "alice_1"))
	bot.handleUpdate(ctx, update(7, "hunter22"))
	bot.handleUpdate(ctx, update(7, "hunter22"))
	bot.handleUpdate(ctx, update(7, "/logout"))

	bot.handleUpdate(ctx, update(7, "/signals"))
	assert.Contains(t, sender.sent[len(sender.sent)-1], "Login required")

	bot.handleUpdate(ctx, update(7, "/login"))
	bot.handleUpdate(ctx, update(7, "wrongpass"))
	assert.Contains(t, sender.sent[len(sender.sent)-1], "Wrong password")

	bot.handleUpdate(ctx, update(7, "hunter22"))
	assert.Contains(t, sender.sent[len(sender.sent)-1], "Welcome back")

	bot.handleUpdate(ctx, update(7, "/signals"))
	assert.Contains(t, sender.sent[len(sender.sent)-1], "No signals yet")
}

func TestRegisterTwiceRejected(t *testing.T) {
	bot, sender, _ := newTestBot(t)
	ctx := context.Background()

	bot.handleUpdate(ctx, update(7, "/register"))
	bot.handleUpdate(ctx, update(7, "alice_1"))
	bot.handleUpdate(ctx, update(7, "hunter22"))
	bot.handleUpdate(ctx, update(7, "hunter22"))

	bot.handleUpdate(ctx, update(7, "/register"))
	assert.Contains(t, sender.sent[len(sender.sent)-1], "already registered")
}
