package app

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"leadchat/internal/ai"
	"leadchat/internal/model"
	"leadchat/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Conversation{},
		&model.Message{},
		&model.Prospect{},
		&model.File{},
	))
	return db
}

type stubReplies struct {
	reply       string
	lastMessage string
	lastContext []string
}

func (s *stubReplies) GenerateReply(_ context.Context, message string, priorContext []string) string {
	s.lastMessage = message
	s.lastContext = priorContext
	return s.reply
}

type capturingPublisher struct {
	events []any
}

func (p *capturingPublisher) Publish(_ context.Context, event any) error {
	p.events = append(p.events, event)
	return nil
}

type stubAttachments struct {
	content map[string]string
}

func (s *stubAttachments) Open(filename string) (io.ReadCloser, error) {
	content, ok := s.content[filename]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func newTestChatService(db *gorm.DB, replies ReplyGenerator, publisher EventPublisher, attachments AttachmentStore) *ChatService {
	return NewChatService(
		repository.NewConversationRepository(db),
		repository.NewMessageRepository(db),
		repository.NewFileRepository(db),
		replies,
		publisher,
		nil,
		attachments,
		20,
		zerolog.Nop(),
	)
}

func createConversation(t *testing.T, db *gorm.DB, title string) *model.Conversation {
	t.Helper()
	conversation := &model.Conversation{Title: title}
	require.NoError(t, db.Create(conversation).Error)
	return conversation
}

func countMessages(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&model.Message{}).Count(&count).Error)
	return count
}

func TestSendMessageCreatesUserAndAssistantPair(t *testing.T) {
	db := newTestDB(t)
	svc := newTestChatService(db, &stubReplies{reply: "Tentu, saya bantu."}, nil, nil)
	conversation := createConversation(t, db, "New Chat")

	result, err := svc.SendMessage(context.Background(), SendMessageInput{
		ConversationID: conversation.ID,
		Content:        "Berapa ongkos kirim ke Bandung?",
	})
	require.NoError(t, err)

	require.NotNil(t, result.UserMessage)
	require.NotNil(t, result.AIMessage)
	assert.Equal(t, model.RoleUser, result.UserMessage.Role)
	assert.Equal(t, model.RoleAssistant, result.AIMessage.Role)
	assert.Equal(t, conversation.ID, result.UserMessage.ConversationID)
	assert.Equal(t, conversation.ID, result.AIMessage.ConversationID)
	assert.Less(t, result.UserMessage.ID, result.AIMessage.ID)
	assert.Equal(t, "Tentu, saya bantu.", result.AIMessage.Content)
	assert.EqualValues(t, 2, countMessages(t, db))
}

func TestSendMessageUpdatesConversationTitle(t *testing.T) {
	db := newTestDB(t)
	svc := newTestChatService(db, &stubReplies{reply: "ok"}, nil, nil)
	conversation := createConversation(t, db, "New Chat")

	long := strings.Repeat("a", 60)
	_, err := svc.SendMessage(context.Background(), SendMessageInput{
		ConversationID: conversation.ID,
		Content:        long,
	})
	require.NoError(t, err)

	updated, err := svc.GetConversation(conversation.ID)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 50)+"...", updated.Title)

	short := "Halo kak"
	_, err = svc.SendMessage(context.Background(), SendMessageInput{
		ConversationID: conversation.ID,
		Content:        short,
	})
	require.NoError(t, err)

	updated, err = svc.GetConversation(conversation.ID)
	require.NoError(t, err)
	assert.Equal(t, short, updated.Title)
}

func TestSendMessageBlankContentCreatesNothing(t *testing.T) {
	db := newTestDB(t)
	svc := newTestChatService(db, &stubReplies{reply: "ok"}, nil, nil)
	conversation := createConversation(t, db, "New Chat")

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := svc.SendMessage(context.Background(), SendMessageInput{
			ConversationID: conversation.ID,
			Content:        content,
		})
		assert.ErrorIs(t, err, ErrMessageEmpty)
	}
	assert.EqualValues(t, 0, countMessages(t, db))
}

func TestSendMessageUnknownConversation(t *testing.T) {
	db := newTestDB(t)
	svc := newTestChatService(db, &stubReplies{reply: "ok"}, nil, nil)

	_, err := svc.SendMessage(context.Background(), SendMessageInput{
		ConversationID: 9999,
		Content:        "halo",
	})
	assert.ErrorIs(t, err, ErrConversationNotFound)
	assert.EqualValues(t, 0, countMessages(t, db))
}

func TestSendMessageCompletesWithFallbackReply(t *testing.T) {
	db := newTestDB(t)
	// A real completion client pointed at an unreachable host exercises the
	// fallback path end to end.
	client := ai.NewClient(ai.Config{
		BaseURL: "http://127.0.0.1:1/v1",
		APIKey:  "test-key",
		Model:   "gpt-4o",
	}, zerolog.Nop())
	svc := newTestChatService(db, client, nil, nil)
	conversation := createConversation(t, db, "New Chat")

	result, err := svc.SendMessage(context.Background(), SendMessageInput{
		ConversationID: conversation.ID,
		Content:        "Produk ini masih tersedia?",
	})
	require.NoError(t, err)
	assert.Contains(t, ai.FallbackReplies(), result.AIMessage.Content)
	assert.EqualValues(t, 2, countMessages(t, db))
}

func TestSendMessagePublishesIntentEvent(t *testing.T) {
	db := newTestDB(t)
	publisher := &capturingPublisher{}
	svc := newTestChatService(db, &stubReplies{reply: "ok"}, publisher, nil)
	conversation := createConversation(t, db, "New Chat")

	result, err := svc.SendMessage(context.Background(), SendMessageInput{
		ConversationID: conversation.ID,
		Content:        "Saya mau beli paket premium",
	})
	require.NoError(t, err)

	require.Len(t, publisher.events, 1)
	event, ok := publisher.events[0].(IntentEvent)
	require.True(t, ok)
	assert.Equal(t, result.UserMessage.ID, event.MessageID)
	assert.Equal(t, "Saya mau beli paket premium", event.Content)
}

func TestSendMessageAttachesUploadedFiles(t *testing.T) {
	db := newTestDB(t)
	fileRepo := repository.NewFileRepository(db)
	require.NoError(t, fileRepo.Create(&model.File{
		Filename:     "abc123.txt",
		OriginalName: "notes.txt",
		MimeType:     "text/plain",
		Size:         11,
		Path:         "/tmp/abc123.txt",
	}))

	replies := &stubReplies{reply: "ok"}
	attachments := &stubAttachments{content: map[string]string{"abc123.txt": "hello notes"}}
	svc := newTestChatService(db, replies, nil, attachments)
	conversation := createConversation(t, db, "New Chat")

	result, err := svc.SendMessage(context.Background(), SendMessageInput{
		ConversationID: conversation.ID,
		Content:        "Tolong lihat file saya",
		Files:          []string{"abc123.txt"},
	})
	require.NoError(t, err)

	record, err := fileRepo.GetByFilename("abc123.txt")
	require.NoError(t, err)
	require.NotNil(t, record.MessageID)
	assert.Equal(t, result.UserMessage.ID, *record.MessageID)

	assert.Equal(t, model.JSONMap{"files": []any{"abc123.txt"}}, reloadMetadata(t, db, result.UserMessage.ID))

	require.NotEmpty(t, replies.lastContext)
	assert.Contains(t, replies.lastContext[len(replies.lastContext)-1], "hello notes")
}

func reloadMetadata(t *testing.T, db *gorm.DB, messageID uint) model.JSONMap {
	t.Helper()
	var message model.Message
	require.NoError(t, db.First(&message, messageID).Error)
	return message.Metadata
}

func TestSendMessagePassesPriorTurnsAsContext(t *testing.T) {
	db := newTestDB(t)
	replies := &stubReplies{reply: "ok"}
	svc := newTestChatService(db, replies, nil, nil)
	conversation := createConversation(t, db, "New Chat")

	_, err := svc.SendMessage(context.Background(), SendMessageInput{
		ConversationID: conversation.ID,
		Content:        "Pertanyaan pertama",
	})
	require.NoError(t, err)

	_, err = svc.SendMessage(context.Background(), SendMessageInput{
		ConversationID: conversation.ID,
		Content:        "Pertanyaan kedua",
	})
	require.NoError(t, err)

	require.Len(t, replies.lastContext, 2)
	assert.Equal(t, "user: Pertanyaan pertama", replies.lastContext[0])
	assert.Equal(t, "assistant: ok", replies.lastContext[1])
}

func TestDeleteConversationRemovesMessages(t *testing.T) {
	db := newTestDB(t)
	svc := newTestChatService(db, &stubReplies{reply: "ok"}, nil, nil)
	conversation := createConversation(t, db, "New Chat")

	_, err := svc.SendMessage(context.Background(), SendMessageInput{
		ConversationID: conversation.ID,
		Content:        "halo",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteConversation(conversation.ID))
	assert.EqualValues(t, 0, countMessages(t, db))

	_, err = svc.GetConversation(conversation.ID)
	assert.ErrorIs(t, err, ErrConversationNotFound)

	assert.ErrorIs(t, svc.DeleteConversation(conversation.ID), ErrConversationNotFound)
}

func TestListMessagesOldestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := newTestChatService(db, &stubReplies{reply: "ok"}, nil, nil)
	conversation := createConversation(t, db, "New Chat")

	base := time.Now().Add(-time.Hour)
	for i, content := range []string{"first", "second", "third"} {
		require.NoError(t, db.Create(&model.Message{
			ConversationID: conversation.ID,
			Content:        content,
			Role:           model.RoleUser,
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	messages, err := svc.ListMessages(conversation.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, "third", messages[2].Content)
}

func TestListMessagesUnknownConversation(t *testing.T) {
	db := newTestDB(t)
	svc := newTestChatService(db, &stubReplies{reply: "ok"}, nil, nil)

	_, err := svc.ListMessages(404)
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestListConversationsNewestUpdatedFirst(t *testing.T) {
	db := newTestDB(t)
	svc := newTestChatService(db, &stubReplies{reply: "ok"}, nil, nil)

	older := createConversation(t, db, "older")
	newer := createConversation(t, db, "newer")
	_ = newer

	// Sending to the older conversation bumps its updated_at past the newer one.
	time.Sleep(10 * time.Millisecond)
	_, err := svc.SendMessage(context.Background(), SendMessageInput{
		ConversationID: older.ID,
		Content:        "bump",
	})
	require.NoError(t, err)

	conversations, err := svc.ListConversations()
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	assert.Equal(t, older.ID, conversations[0].ID)
}

func TestRenameConversation(t *testing.T) {
	db := newTestDB(t)
	svc := newTestChatService(db, &stubReplies{reply: "ok"}, nil, nil)
	conversation := createConversation(t, db, "New Chat")

	renamed, err := svc.RenameConversation(conversation.ID, "Order follow-up")
	require.NoError(t, err)
	assert.Equal(t, "Order follow-up", renamed.Title)

	_, err = svc.RenameConversation(conversation.ID, "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.RenameConversation(9999, "whatever")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestCreateConversationRequiresTitle(t *testing.T) {
	db := newTestDB(t)
	svc := newTestChatService(db, &stubReplies{reply: "ok"}, nil, nil)

	_, err := svc.CreateConversation(CreateConversationInput{Title: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	userID := uint(7)
	conversation, err := svc.CreateConversation(CreateConversationInput{Title: "Hi", UserID: &userID})
	require.NoError(t, err)
	require.NotNil(t, conversation.UserID)
	assert.Equal(t, uint(7), *conversation.UserID)
}

func TestTitleFromContent(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"short stays intact", "Halo", "Halo"},
		{"exactly fifty", strings.Repeat("x", 50), strings.Repeat("x", 50)},
		{"truncated with ellipsis", strings.Repeat("x", 51), strings.Repeat("x", 50) + "..."},
		{"multibyte counted as characters", strings.Repeat("日", 51), strings.Repeat("日", 50) + "..."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TitleFromContent(tc.content))
		})
	}
}
