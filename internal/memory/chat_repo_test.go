package memory

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cwrk-planet/presence-hub/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func msgAt(room string, i int) domain.ChatMessage {
	return domain.ChatMessage{
		ID:        fmt.Sprintf("m-%04d", i),
		RoomID:    room,
		UserID:    "u1",
		Username:  "alice",
		Text:      fmt.Sprintf("text %d", i),
		CreatedAt: t0.Add(time.Duration(i) * time.Second),
		Type:      domain.MessageTypeText,
	}
}

func TestChatRepository_AppendTruncatesOldestFirst(t *testing.T) {
	repo := NewChatRepository(0)

	for i := 0; i < 1005; i++ {
		repo.Append(msgAt("general", i))
	}

	all := repo.RecentHistory("general", 5000)
	require.Len(t, all, DefaultMaxMessagesPerRoom)
	assert.Equal(t, "m-0005", all[0].ID)
	assert.Equal(t, "m-1004", all[len(all)-1].ID)
	assert.Equal(t, DefaultMaxMessagesPerRoom, repo.TotalMessages())
}

func TestChatRepository_RecentHistoryIsChronologicalSuffix(t *testing.T) {
	repo := NewChatRepository(10)
	for i := 0; i < 7; i++ {
		repo.Append(msgAt("r", i))
	}

	got := repo.RecentHistory("r", 3)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"m-0004", "m-0005", "m-0006"}, ids(got))

	assert.Len(t, repo.RecentHistory("r", 50), 7)
}

func TestChatRepository_RecentHistoryUnknownRoom(t *testing.T) {
	repo := NewChatRepository(10)

	got := repo.RecentHistory("nowhere", 50)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestChatRepository_RecentHistoryReturnsCopy(t *testing.T) {
	repo := NewChatRepository(10)
	repo.Append(msgAt("r", 0))

	got := repo.RecentHistory("r", 1)
	got[0].Text = "mutated"

	assert.Equal(t, "text 0", repo.RecentHistory("r", 1)[0].Text)
}

func TestChatRepository_ConcurrentAppendKeepsEveryMessage(t *testing.T) {
	repo := NewChatRepository(0)
	const n = 200

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			repo.Append(domain.ChatMessage{ID: uuid.NewString(), RoomID: "general", CreatedAt: t0})
		}()
	}
	wg.Wait()

	got := repo.RecentHistory("general", n)
	require.Len(t, got, n)
	seen := make(map[string]struct{}, n)
	for _, m := range got {
		seen[m.ID] = struct{}{}
	}
	assert.Len(t, seen, n)
}

func TestChatRepository_PageWalksBackwards(t *testing.T) {
	repo := NewChatRepository(100)
	for i := 0; i < 5; i++ {
		repo.Append(msgAt("r", i))
	}

	page, next, err := repo.Page("r", "", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"m-0004", "m-0003"}, ids(page))
	require.NotEmpty(t, next)

	page, next, err = repo.Page("r", next, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"m-0002", "m-0001"}, ids(page))
	require.NotEmpty(t, next)

	page, next, err = repo.Page("r", next, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"m-0000"}, ids(page))
	assert.Empty(t, next)
}

func TestChatRepository_PageCursorSurvivesTruncation(t *testing.T) {
	repo := NewChatRepository(3)
	for i := 0; i < 3; i++ {
		repo.Append(msgAt("r", i))
	}
	_, next, err := repo.Page("r", "", 1)
	require.NoError(t, err)

	// m-0002 is the cursor; pushing 3 more drops it from the log.
	for i := 3; i < 6; i++ {
		repo.Append(msgAt("r", i))
	}

	page, _, err := repo.Page("r", next, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestChatRepository_PageInvalidCursor(t *testing.T) {
	repo := NewChatRepository(10)

	_, _, err := repo.Page("r", "%%%not-base64", 10)
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestChatRepository_Summaries(t *testing.T) {
	repo := NewChatRepository(10)
	repo.Append(msgAt("b", 1))
	repo.Append(msgAt("a", 2))
	repo.Append(msgAt("a", 3))

	got := repo.Summaries()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].RoomID)
	assert.Equal(t, 2, got[0].MessageCount)
	assert.Equal(t, "text 3", got[0].LastMessage)
	assert.Equal(t, t0.Add(3*time.Second), got[0].LastAt)
	assert.Equal(t, 2, repo.RoomCount())
	assert.Equal(t, 3, repo.TotalMessages())
}

func ids(msgs []domain.ChatMessage) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.ID)
	}
	return out
}
