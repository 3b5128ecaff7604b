// Package session mediates all mutations to chat records: which chat is
// active, lazy record creation, the message exchange cycle, and the
// rename/delete operations. Every mutation is written through the store
// before the call returns.
package session

import (
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/sacr/rchat/internal/debug"
	"github.com/sacr/rchat/internal/llm"
	"github.com/sacr/rchat/internal/store"
)

// Summary is a (id, title) row for chat listings.
type Summary struct {
	ID    string
	Title string
}

// Session holds the loaded chat document and the active-chat pointer.
// The pointer is per-session state and is never persisted.
type Session struct {
	store    *store.Store
	document *store.ChatStore
	client   llm.Client
	model    string
	activeID string
}

// New loads the document and returns a session with no active chat.
func New(s *store.Store, client llm.Client, model string) *Session {
	return &Session{
		store:    s,
		document: s.Load(),
		client:   client,
		model:    model,
	}
}

// Select sets the active chat pointer.
func (s *Session) Select(chatID string) {
	s.activeID = chatID
}

// NewChat clears the active pointer. No record is created: that happens
// lazily on the first submitted message, so clicking through "new chat"
// without sending anything leaves no orphan record.
func (s *Session) NewChat() {
	s.activeID = ""
}

// Active returns the active chat, or nil when there is none. A pointer to
// a since-deleted chat falls back to nil rather than failing.
func (s *Session) Active() *store.Chat {
	if s.activeID == "" {
		return nil
	}
	chat := s.document.Get(s.activeID)
	if chat == nil {
		s.activeID = ""
	}
	return chat
}

// EnsureActiveChat returns the active chat, creating and registering a new
// record when there is none. Called once per submitted message.
func (s *Session) EnsureActiveChat() *store.Chat {
	if chat := s.Active(); chat != nil {
		return chat
	}
	chat := store.NewChat()
	s.document.Chats[chat.ID] = chat
	s.activeID = chat.ID
	return chat
}

// Rename updates a chat's title and persists. Empty or unchanged titles
// are no-ops, as is an unknown id: no write occurs.
func (s *Session) Rename(chatID, title string) error {
	chat := s.document.Get(chatID)
	if chat == nil {
		return nil
	}
	if title == "" || title == chat.Title {
		return nil
	}
	chat.Title = title
	return errors.Wrap(s.store.Save(s.document), "saving chat store")
}

// Delete removes a chat and persists, clearing the active pointer if it
// referenced the deleted chat. Deleting an unknown id is a no-op.
func (s *Session) Delete(chatID string) error {
	if s.document.Get(chatID) == nil {
		return nil
	}
	delete(s.document.Chats, chatID)
	if s.activeID == chatID {
		s.activeID = ""
	}
	return errors.Wrap(s.store.Save(s.document), "saving chat store")
}

// ListByRecency returns chat summaries ordered by descending creation time.
func (s *Session) ListByRecency() []Summary {
	chats := s.document.ListByRecency()
	summaries := make([]Summary, 0, len(chats))
	for _, chat := range chats {
		summaries = append(summaries, Summary{ID: chat.ID, Title: chat.Title})
	}
	return summaries
}

// Submit runs one exchange against the active chat: append the user
// message, stream the reply through onToken, append the assembled reply and
// persist. After the first completed exchange a title is generated, best
// effort. On a gateway failure the user message stays in memory but nothing
// is persisted and no assistant message is added; resubmitting retries.
func (s *Session) Submit(ctx context.Context, text string, onToken func(token string)) (*store.Chat, error) {
	chat := s.EnsureActiveChat()
	chat.Messages = append(chat.Messages, &llm.Message{Role: llm.UserRole, Content: text})

	request := &llm.CreateTextGenerationRequest{
		Model:    s.model,
		Messages: chat.Messages,
	}
	stream, err := s.client.CreateTextGeneration(ctx, request)
	if err != nil {
		return chat, errors.Wrap(err, "creating completion stream")
	}
	defer stream.Close()

	// Fold the fragments into the one final string the store will see.
	var reply strings.Builder
	for {
		event, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return chat, errors.Wrap(err, "streaming reply")
		}
		if event.Token != "" {
			reply.WriteString(event.Token)
			if onToken != nil {
				onToken(event.Token)
			}
		}
	}

	chat.Messages = append(chat.Messages, &llm.Message{Role: llm.AssistantRole, Content: reply.String()})
	if err := s.store.Save(s.document); err != nil {
		return chat, errors.Wrap(err, "saving chat store")
	}

	s.maybeGenerateTitle(ctx, chat)
	return chat, nil
}

// maybeGenerateTitle runs only off the first completed exchange: exactly
// two messages and the title still at its default. Failures are swallowed;
// a title is a convenience and must never block message persistence.
func (s *Session) maybeGenerateTitle(ctx context.Context, chat *store.Chat) {
	if len(chat.Messages) != 2 || chat.Title != store.DefaultTitle {
		return
	}
	title := llm.GenerateTitle(ctx, s.client, s.model, chat.Messages)
	if title == "" || title == chat.Title {
		return
	}
	chat.Title = title
	if err := s.store.Save(s.document); err != nil {
		debug.GetLogger().Warn("saving generated title", "chat", chat.ID, "error", err)
	}
}
