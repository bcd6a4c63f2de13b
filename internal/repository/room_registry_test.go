package repository

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCreateRoom(t *testing.T) {
	reg := NewRoomRegistry("")

	room, err := reg.Create("doc1", strPtr(""))
	require.NoError(t, err)
	assert.Equal(t, "doc1", room.ID)

	_, err = reg.Create("doc1", strPtr(""))
	assert.ErrorIs(t, err, ErrRoomExists)
}

func TestCreateRoomTrimsID(t *testing.T) {
	reg := NewRoomRegistry("")

	room, err := reg.Create("  doc1 \t", nil)
	require.NoError(t, err)
	assert.Equal(t, "doc1", room.ID)

	_, err = reg.Create("doc1", nil)
	assert.ErrorIs(t, err, ErrRoomExists)
}

func TestCreateRoomRejectsBlankID(t *testing.T) {
	reg := NewRoomRegistry("")

	for _, id := range []string{"", "   ", "\n\t"} {
		_, err := reg.Create(id, nil)
		assert.ErrorIs(t, err, ErrInvalidRoomID)
	}
	assert.Empty(t, reg.List())
}

func TestCreateRoomContent(t *testing.T) {
	reg := NewRoomRegistry("<mxGraphModel/>")

	withDefault, err := reg.Create("a", nil)
	require.NoError(t, err)
	content, lock := withDefault.Content()
	assert.Equal(t, "<mxGraphModel/>", content)
	assert.Nil(t, lock)

	explicit, err := reg.Create("b", strPtr("<custom/>"))
	require.NoError(t, err)
	content, _ = explicit.Content()
	assert.Equal(t, "<custom/>", content)
}

func TestGetOrCreateReturnsSameRoom(t *testing.T) {
	reg := NewRoomRegistry("tmpl")

	first := reg.GetOrCreate("doc")
	second := reg.GetOrCreate("doc")
	assert.Same(t, first, second)

	content, _ := first.Content()
	assert.Equal(t, "tmpl", content)

	_, err := reg.Create("doc", nil)
	assert.ErrorIs(t, err, ErrRoomExists)
}

func TestGetOrCreateConcurrent(t *testing.T) {
	reg := NewRoomRegistry("")

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[interface{}]struct{})
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			room := reg.GetOrCreate("shared")
			mu.Lock()
			seen[room] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 1)
	assert.Equal(t, []string{"shared"}, reg.List())
}

func TestGetDoesNotCreate(t *testing.T) {
	reg := NewRoomRegistry("")

	_, err := reg.Get("missing")
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.Empty(t, reg.List())

	reg.GetOrCreate("present")
	room, err := reg.Get("present")
	require.NoError(t, err)
	assert.Equal(t, "present", room.ID)
}

func TestListReturnsAllIDs(t *testing.T) {
	reg := NewRoomRegistry("")
	_, _ = reg.Create("a", nil)
	_, _ = reg.Create("b", nil)
	reg.GetOrCreate("c")

	assert.ElementsMatch(t, []string{"a", "b", "c"}, reg.List())
}
