package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"leadchat/internal/model"
	"leadchat/internal/pkg/pdfextract"
	"leadchat/internal/repository"
)

const (
	titleMaxChars       = 50
	attachmentMaxChars  = 4000
	defaultContextTurns = 20
)

// ReplyGenerator produces assistant replies. Implementations absorb upstream
// failures and always return usable text.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, message string, priorContext []string) string
}

// EventPublisher pushes fire-and-forget events to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// HistoryCache caches a conversation's message list.
type HistoryCache interface {
	GetHistory(ctx context.Context, conversationID uint) ([]model.Message, bool, error)
	SetHistory(ctx context.Context, conversationID uint, messages []model.Message) error
	DeleteHistory(ctx context.Context, conversationID uint) error
	MarkDirty(ctx context.Context, conversationID uint) error
	IsDirty(ctx context.Context, conversationID uint) (bool, error)
}

// AttachmentStore reads back uploaded files for prompt-context extraction.
type AttachmentStore interface {
	Open(filename string) (io.ReadCloser, error)
}

type ChatService struct {
	conversationRepo *repository.ConversationRepository
	messageRepo      *repository.MessageRepository
	fileRepo         *repository.FileRepository
	replies          ReplyGenerator
	intentEvents     EventPublisher
	historyCache     HistoryCache
	attachments      AttachmentStore
	maxContext       int
	log              zerolog.Logger
}

type CreateConversationInput struct {
	Title  string
	UserID *uint
}

type SendMessageInput struct {
	ConversationID uint
	Content        string
	Files          []string
}

type SendMessageResult struct {
	UserMessage *model.Message `json:"userMessage"`
	AIMessage   *model.Message `json:"aiMessage"`
}

// IntentEvent asks the intent worker to classify a persisted message.
type IntentEvent struct {
	MessageID uint   `json:"message_id"`
	Content   string `json:"content"`
}

func NewChatService(
	conversationRepo *repository.ConversationRepository,
	messageRepo *repository.MessageRepository,
	fileRepo *repository.FileRepository,
	replies ReplyGenerator,
	intentEvents EventPublisher,
	historyCache HistoryCache,
	attachments AttachmentStore,
	maxContext int,
	log zerolog.Logger,
) *ChatService {
	if maxContext <= 0 {
		maxContext = defaultContextTurns
	}
	return &ChatService{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		fileRepo:         fileRepo,
		replies:          replies,
		intentEvents:     intentEvents,
		historyCache:     historyCache,
		attachments:      attachments,
		maxContext:       maxContext,
		log:              log.With().Str("component", "chat-service").Logger(),
	}
}

func (s *ChatService) CreateConversation(input CreateConversationInput) (*model.Conversation, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrInvalidInput
	}

	conversation := &model.Conversation{
		Title:  title,
		UserID: input.UserID,
	}
	if err := s.conversationRepo.Create(conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

func (s *ChatService) ListConversations() ([]model.Conversation, error) {
	return s.conversationRepo.List(0)
}

func (s *ChatService) GetConversation(id uint) (*model.Conversation, error) {
	if id == 0 {
		return nil, ErrConversationNotFound
	}
	conversation, err := s.conversationRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}
	return conversation, nil
}

func (s *ChatService) RenameConversation(id uint, title string) (*model.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrInvalidInput
	}

	conversation, err := s.conversationRepo.UpdateTitle(id, title)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}
	return conversation, nil
}

func (s *ChatService) DeleteConversation(id uint) error {
	conversation, err := s.conversationRepo.GetByID(id)
	if err != nil {
		return err
	}
	if conversation == nil {
		return ErrConversationNotFound
	}

	if err := s.messageRepo.DeleteByConversationID(id); err != nil {
		return err
	}
	if _, err := s.conversationRepo.Delete(id); err != nil {
		return err
	}
	if s.historyCache != nil {
		_ = s.historyCache.DeleteHistory(context.Background(), id)
	}
	return nil
}

func (s *ChatService) ListMessages(conversationID uint) ([]model.Message, error) {
	if _, err := s.GetConversation(conversationID); err != nil {
		return nil, err
	}

	ctx := context.Background()
	if s.historyCache != nil {
		if dirty, err := s.historyCache.IsDirty(ctx, conversationID); err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, conversationID); cacheErr == nil && hit {
				return cached, nil
			}
		}
	}

	messages, err := s.messageRepo.ListByConversationID(conversationID)
	if err != nil {
		return nil, err
	}
	if s.historyCache != nil {
		if dirty, err := s.historyCache.IsDirty(ctx, conversationID); err == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, conversationID, messages)
		}
	}
	return messages, nil
}

// SendMessage runs the linear send flow: persist the user turn, generate the
// assistant reply, persist it, retitle the conversation. The two inserts are
// deliberately not transactional; a failure after the first leaves the user
// message in place.
func (s *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*SendMessageResult, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrMessageEmpty
	}

	conversation, err := s.conversationRepo.GetByID(input.ConversationID)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}

	priorContext := s.buildPriorContext(input.ConversationID)

	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, input.ConversationID)
		_ = s.historyCache.DeleteHistory(ctx, input.ConversationID)
	}

	userMessage := &model.Message{
		ConversationID: input.ConversationID,
		Content:        content,
		Role:           model.RoleUser,
		CreatedAt:      time.Now(),
	}
	if len(input.Files) > 0 {
		userMessage.Metadata = model.JSONMap{"files": input.Files}
	}
	if err := s.messageRepo.Create(userMessage); err != nil {
		return nil, err
	}

	priorContext = append(priorContext, s.attachFiles(input.Files, userMessage.ID)...)

	reply := s.replies.GenerateReply(ctx, content, priorContext)

	assistantMessage := &model.Message{
		ConversationID: input.ConversationID,
		Content:        reply,
		Role:           model.RoleAssistant,
		CreatedAt:      time.Now(),
	}
	if err := s.messageRepo.Create(assistantMessage); err != nil {
		return nil, err
	}

	if _, err := s.conversationRepo.UpdateTitle(input.ConversationID, TitleFromContent(content)); err != nil {
		return nil, err
	}

	s.publishIntentEvent(userMessage)

	return &SendMessageResult{
		UserMessage: userMessage,
		AIMessage:   assistantMessage,
	}, nil
}

// TitleFromContent derives a conversation title from the latest user text:
// the text itself up to 50 characters, otherwise the first 50 plus "...".
func TitleFromContent(content string) string {
	runes := []rune(content)
	if len(runes) <= titleMaxChars {
		return content
	}
	return string(runes[:titleMaxChars]) + "..."
}

func (s *ChatService) buildPriorContext(conversationID uint) []string {
	recent, err := s.messageRepo.ListRecentByConversationID(conversationID, s.maxContext)
	if err != nil {
		s.log.Error().Err(err).Uint("conversation_id", conversationID).Msg("load prior context failed")
		return nil
	}

	lines := make([]string, 0, len(recent))
	for _, item := range recent {
		lines = append(lines, fmt.Sprintf("%s: %s", item.Role, item.Content))
	}
	return lines
}

// attachFiles links previously uploaded files to the user message and
// returns any extractable document text as extra reply context.
func (s *ChatService) attachFiles(filenames []string, messageID uint) []string {
	if len(filenames) == 0 || s.fileRepo == nil {
		return nil
	}

	if err := s.fileRepo.AttachToMessage(filenames, messageID); err != nil {
		s.log.Error().Err(err).Msg("attach files to message failed")
	}

	var context []string
	for _, filename := range filenames {
		record, err := s.fileRepo.GetByFilename(filename)
		if err != nil || record == nil {
			continue
		}
		text := s.extractAttachmentText(record)
		if text != "" {
			context = append(context, fmt.Sprintf("Isi dokumen %s: %s", record.OriginalName, text))
		}
	}
	return context
}

func (s *ChatService) extractAttachmentText(record *model.File) string {
	if s.attachments == nil {
		return ""
	}

	switch record.MimeType {
	case "application/pdf":
		f, err := s.attachments.Open(record.Filename)
		if err != nil {
			return ""
		}
		defer f.Close()
		text, err := pdfextract.ExtractText(f, attachmentMaxChars)
		if err != nil {
			s.log.Warn().Err(err).Str("filename", record.Filename).Msg("pdf text extraction failed")
			return ""
		}
		return strings.TrimSpace(text)
	case "text/plain", "text/csv", "application/json":
		f, err := s.attachments.Open(record.Filename)
		if err != nil {
			return ""
		}
		defer f.Close()
		raw, err := io.ReadAll(io.LimitReader(f, attachmentMaxChars))
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(raw))
	default:
		return ""
	}
}

func (s *ChatService) publishIntentEvent(message *model.Message) {
	if s.intentEvents == nil {
		return
	}
	event := IntentEvent{MessageID: message.ID, Content: message.Content}
	if err := s.intentEvents.Publish(context.Background(), event); err != nil {
		s.log.Error().Err(err).Uint("message_id", message.ID).Msg("publish intent event failed")
	}
}
