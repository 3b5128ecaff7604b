package session

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sacr/rchat/internal/llm"
	"github.com/sacr/rchat/internal/store"
)

// fakeStream replays scripted tokens, then ends with err (io.EOF by default).
type fakeStream struct {
	tokens []string
	err    error
	index  int
}

func (s *fakeStream) Close() {}
func (s *fakeStream) Recv() (*llm.StreamEvent, error) {
	if s.index < len(s.tokens) {
		token := s.tokens[s.index]
		s.index++
		return &llm.StreamEvent{Token: token}, nil
	}
	if s.err != nil {
		return nil, s.err
	}
	return nil, io.EOF
}

// fakeClient scripts the gateway.
type fakeClient struct {
	tokens     []string
	createErr  error
	streamErr  error
	title      string
	titleErr   error
	titleCalls int
}

func (c *fakeClient) CreateTextGeneration(ctx context.Context, request *llm.CreateTextGenerationRequest) (llm.Stream, error) {
	if c.createErr != nil {
		return nil, c.createErr
	}
	return &fakeStream{tokens: c.tokens, err: c.streamErr}, nil
}

func (c *fakeClient) CreateText(ctx context.Context, request *llm.CreateTextGenerationRequest) (string, error) {
	c.titleCalls++
	if c.titleErr != nil {
		return "", c.titleErr
	}
	return c.title, nil
}

func newTestSession(t *testing.T, client llm.Client) (*Session, *store.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chats.json")
	s, err := store.New(path)
	require.NoError(t, err)
	return New(s, client, "gpt-4o"), s, path
}

func TestNewChatCreatesNoOrphanRecord(t *testing.T) {
	sess, s, _ := newTestSession(t, &fakeClient{})

	sess.NewChat()
	assert.Nil(t, sess.Active())
	assert.Empty(t, sess.ListByRecency())
	assert.Empty(t, s.Load().Chats)
}

func TestFirstExchange(t *testing.T) {
	client := &fakeClient{tokens: []string{"Hello", ", ", "world"}, title: "Greeting test"}
	sess, s, _ := newTestSession(t, client)

	var streamed string
	chat, err := sess.Submit(context.Background(), "hi there", func(token string) { streamed += token })
	require.NoError(t, err)

	require.Len(t, chat.Messages, 2)
	assert.Equal(t, llm.UserRole, chat.Messages[0].Role)
	assert.Equal(t, "hi there", chat.Messages[0].Content)
	assert.Equal(t, llm.AssistantRole, chat.Messages[1].Role)
	assert.Equal(t, "Hello, world", chat.Messages[1].Content)
	assert.Equal(t, "Hello, world", streamed)
	assert.Equal(t, "Greeting test", chat.Title)

	// Both the exchange and the title were persisted.
	loaded := s.Load()
	require.Contains(t, loaded.Chats, chat.ID)
	assert.Equal(t, "Greeting test", loaded.Chats[chat.ID].Title)
	assert.Len(t, loaded.Chats[chat.ID].Messages, 2)
}

func TestTitleGeneratedOnlyOnFirstExchange(t *testing.T) {
	client := &fakeClient{tokens: []string{"ok"}, title: "First title"}
	sess, _, _ := newTestSession(t, client)

	ctx := context.Background()
	chat, err := sess.Submit(ctx, "one", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, client.titleCalls)
	assert.Equal(t, "First title", chat.Title)

	for _, text := range []string{"two", "three"} {
		_, err := sess.Submit(ctx, text, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, client.titleCalls)
	assert.Len(t, chat.Messages, 6)
}

func TestTitleNotGeneratedOnResumedChatWithCustomTitle(t *testing.T) {
	client := &fakeClient{tokens: []string{"ok"}, title: "unused"}
	sess, _, _ := newTestSession(t, client)

	chat := sess.EnsureActiveChat()
	chat.Title = "My research"
	_, err := sess.Submit(context.Background(), "hello", nil)
	require.NoError(t, err)

	assert.Zero(t, client.titleCalls)
	assert.Equal(t, "My research", chat.Title)
}

func TestTitleFailureKeepsDefault(t *testing.T) {
	client := &fakeClient{tokens: []string{"ok"}, titleErr: errors.New("rate limited")}
	sess, s, _ := newTestSession(t, client)

	chat, err := sess.Submit(context.Background(), "hello", nil)
	require.NoError(t, err)

	assert.Equal(t, store.DefaultTitle, chat.Title)
	loaded := s.Load()
	require.Contains(t, loaded.Chats, chat.ID)
	assert.Equal(t, store.DefaultTitle, loaded.Chats[chat.ID].Title)
	assert.Len(t, loaded.Chats[chat.ID].Messages, 2)
}

func TestStreamFailureLeavesExchangeUnpersisted(t *testing.T) {
	client := &fakeClient{tokens: []string{"partial "}, streamErr: errors.New("connection reset")}
	sess, s, _ := newTestSession(t, client)

	chat, err := sess.Submit(context.Background(), "hello", nil)
	require.Error(t, err)

	// The user message stays in memory, no assistant message was added.
	require.Len(t, chat.Messages, 1)
	assert.Equal(t, llm.UserRole, chat.Messages[0].Role)
	// Nothing was written to disk.
	assert.Empty(t, s.Load().Chats)
	assert.Zero(t, client.titleCalls)
}

func TestCreateStreamFailureLeavesExchangeUnpersisted(t *testing.T) {
	client := &fakeClient{createErr: errors.New("no route to host")}
	sess, s, _ := newTestSession(t, client)

	chat, err := sess.Submit(context.Background(), "hello", nil)
	require.Error(t, err)
	require.Len(t, chat.Messages, 1)
	assert.Empty(t, s.Load().Chats)
}

func TestEnsureActiveChatReusesActiveRecord(t *testing.T) {
	client := &fakeClient{tokens: []string{"ok"}}
	sess, _, _ := newTestSession(t, client)

	ctx := context.Background()
	first, err := sess.Submit(ctx, "one", nil)
	require.NoError(t, err)
	second, err := sess.Submit(ctx, "two", nil)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, sess.ListByRecency(), 1)
}

func TestSelectDanglingPointerFallsBack(t *testing.T) {
	sess, _, _ := newTestSession(t, &fakeClient{})
	sess.Select("ghost")
	assert.Nil(t, sess.Active())
}

func TestDeleteActiveChatClearsPointer(t *testing.T) {
	client := &fakeClient{tokens: []string{"ok"}}
	sess, s, _ := newTestSession(t, client)

	chat, err := sess.Submit(context.Background(), "hello", nil)
	require.NoError(t, err)
	require.NotNil(t, sess.Active())

	require.NoError(t, sess.Delete(chat.ID))
	assert.Nil(t, sess.Active())
	assert.Empty(t, s.Load().Chats)
}

func TestDeleteUnknownChatIsNoOp(t *testing.T) {
	client := &fakeClient{tokens: []string{"ok"}}
	sess, s, _ := newTestSession(t, client)

	chat, err := sess.Submit(context.Background(), "hello", nil)
	require.NoError(t, err)

	require.NoError(t, sess.Delete("ghost"))
	assert.Contains(t, s.Load().Chats, chat.ID)
}

func TestRenamePersistsImmediately(t *testing.T) {
	client := &fakeClient{tokens: []string{"ok"}, title: "Generated"}
	sess, s, _ := newTestSession(t, client)

	chat, err := sess.Submit(context.Background(), "hello", nil)
	require.NoError(t, err)

	require.NoError(t, sess.Rename(chat.ID, "Renamed"))
	assert.Equal(t, "Renamed", s.Load().Chats[chat.ID].Title)
}

func TestRenameNoOpsPerformNoWrite(t *testing.T) {
	client := &fakeClient{tokens: []string{"ok"}, title: "Generated"}
	sess, s, path := newTestSession(t, client)

	chat, err := sess.Submit(context.Background(), "hello", nil)
	require.NoError(t, err)

	// Remove the backing file: a no-op rename must not recreate it.
	require.NoError(t, os.Remove(path))
	require.NoError(t, sess.Rename(chat.ID, ""))
	require.NoError(t, sess.Rename(chat.ID, chat.Title))
	require.NoError(t, sess.Rename("ghost", "whatever"))
	assert.Empty(t, s.Load().Chats)

	// A real rename writes again.
	require.NoError(t, sess.Rename(chat.ID, "Fresh title"))
	assert.Equal(t, "Fresh title", s.Load().Chats[chat.ID].Title)
}

func TestListByRecencyOrdersSummaries(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "chats.json"))
	require.NoError(t, err)
	chatStore := store.NewChatStore()
	for id, createdAt := range map[string]float64{"a": 10, "b": 30, "c": 20} {
		chatStore.Chats[id] = &store.Chat{ID: id, Title: "chat " + id, CreatedAt: createdAt}
	}
	require.NoError(t, s.Save(chatStore))

	sess := New(s, &fakeClient{}, "gpt-4o")
	ids := []string{}
	for _, summary := range sess.ListByRecency() {
		ids = append(ids, summary.ID)
	}
	assert.Equal(t, []string{"b", "c", "a"}, ids)
}
