package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/sacr/rchat/internal/debug"
	"github.com/sacr/rchat/internal/llm"
)

// DefaultTitle is the placeholder title of a chat before one is generated.
const DefaultTitle = "New Chat"

// Chat is one persisted conversation.
type Chat struct {
	// ID of this chat. Immutable, matches the key it is stored under.
	ID string `json:"id"`
	// Title of this chat, DefaultTitle until a real one is generated.
	Title string `json:"title"`
	// Seconds since epoch, set once at creation. Display order only.
	CreatedAt float64 `json:"created_at"`
	// The messages of this chat, append-only.
	Messages []*llm.Message `json:"messages"`
}

// NewChat instantiates and returns a new chat.
func NewChat() *Chat {
	return &Chat{
		ID:        uuid.New().String()[:8],
		Title:     DefaultTitle,
		CreatedAt: float64(time.Now().UnixNano()) / 1e9,
		Messages:  []*llm.Message{},
	}
}

// ChatStore is the root persisted document.
type ChatStore struct {
	Chats map[string]*Chat `json:"chats"`
}

// NewChatStore returns an empty document.
func NewChatStore() *ChatStore {
	return &ChatStore{Chats: map[string]*Chat{}}
}

// Get a chat. Returns nil when absent.
func (cs *ChatStore) Get(chatID string) *Chat {
	return cs.Chats[chatID]
}

// ListByRecency returns chats ordered by descending creation time.
func (cs *ChatStore) ListByRecency() []*Chat {
	chats := make([]*Chat, 0, len(cs.Chats))
	for _, chat := range cs.Chats {
		chats = append(chats, chat)
	}
	sort.SliceStable(chats, func(i, j int) bool { return chats[i].CreatedAt > chats[j].CreatedAt })
	return chats
}

// Store persists a ChatStore document to a single JSON file.
type Store struct {
	path     string
	degraded bool
}

// Degraded reports whether the last Load found an existing file it could
// not use. Informational only; Load already returned an empty document.
func (s *Store) Degraded() bool {
	return s.degraded
}

// New store backed by the given file path.
func New(path string) (*Store, error) {
	dir, _ := filepath.Split(path)
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrap(err, "creating directory")
		}
	}
	return &Store{path: path}, nil
}

// Load reads the backing file. It never fails: a missing, empty or corrupt
// file degrades to an empty document so a broken history cannot prevent
// starting a new conversation.
func (s *Store) Load() *ChatStore {
	s.degraded = false
	bytes, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return NewChatStore()
	}
	if err != nil {
		s.degraded = true
		return NewChatStore()
	}
	if len(bytes) == 0 {
		return NewChatStore()
	}

	chatStore := &ChatStore{}
	if err := json.Unmarshal(bytes, chatStore); err != nil {
		debug.GetLogger().Warn("discarding unreadable chat file", "path", s.path, "error", err)
		s.degraded = true
		return NewChatStore()
	}
	if chatStore.Chats == nil {
		s.degraded = true
		return NewChatStore()
	}

	// Restore the invariant that a record's ID matches its key.
	for id, chat := range chatStore.Chats {
		if chat == nil {
			delete(chatStore.Chats, id)
			continue
		}
		chat.ID = id
		if chat.Title == "" {
			chat.Title = DefaultTitle
		}
	}
	return chatStore
}

// Save overwrites the backing file with the full document. Writes to a
// temporary file first and renames it over, so a crash mid-write cannot
// truncate the history.
func (s *Store) Save(chatStore *ChatStore) error {
	bytes, err := json.MarshalIndent(chatStore, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling chat store")
	}

	// Same directory as the target so the rename cannot cross filesystems.
	dir, _ := filepath.Split(s.path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, ".chats-*.json")
	if err != nil {
		return errors.Wrap(err, "creating temporary file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(bytes); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing temporary file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temporary file")
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return errors.Wrap(err, "setting file mode")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrap(err, "replacing chat file")
	}
	return nil
}
