package templates

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	stderrors "errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsonbench/internal/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "templates"))
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return s
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "my_template_v1", SanitizeName("my template.v1"))
	assert.Equal(t, "ok-name_2", SanitizeName("ok-name_2"))
	assert.Equal(t, "______etc_passwd", SanitizeName("../../etc/passwd"))
}

func TestStore_SaveGetList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "a missing directory lists as empty")

	name, err := s.Save(ctx, "user profile", json.RawMessage(`{"name":"Ada"}`), "designer", "A user")
	require.NoError(t, err)
	assert.Equal(t, "user_profile", name)

	_, err = s.Save(ctx, "another", json.RawMessage(`"{\"raw\": true}"`), "", "")
	require.NoError(t, err)

	got, err := s.Get(ctx, "user_profile")
	require.NoError(t, err)
	assert.Equal(t, "designer", got.Type)
	assert.Equal(t, "A user", got.Description)
	assert.JSONEq(t, `{"name":"Ada"}`, string(got.Content))
	assert.Equal(t, "2026-01-02T03:05:05Z", got.SavedAt)
	assert.Equal(t, got.SavedAt, got.CreatedAt)

	list, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "another", list[0].Name)
	assert.Equal(t, DefaultType, list[0].Type)
	assert.Equal(t, "user_profile.json", list[1].Filename)
	assert.Equal(t, "A user", list[1].Description)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 5, 5, 0, time.UTC), list[1].CreatedAt)
}

func TestStore_SaveValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Save(ctx, " ", json.RawMessage(`{}`), "", "")
	assert.True(t, stderrors.Is(err, errors.ErrTemplateNameRequired))

	for _, content := range []string{"", "null", `""`} {
		_, err = s.Save(ctx, "x", json.RawMessage(content), "", "")
		assert.True(t, stderrors.Is(err, errors.ErrTemplateContentRequired), content)
	}

	_, err = s.Save(ctx, "x", json.RawMessage(`{`), "", "")
	assert.True(t, stderrors.Is(err, errors.ErrInvalidJSON))
}

func TestStore_SaveKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Save(ctx, "t", json.RawMessage(`1`), "", "")
	require.NoError(t, err)
	first, err := s.Get(ctx, "t")
	require.NoError(t, err)

	_, err = s.Save(ctx, "t", json.RawMessage(`2`), "", "")
	require.NoError(t, err)
	second, err := s.Get(ctx, "t")
	require.NoError(t, err)

	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.NotEqual(t, first.SavedAt, second.SavedAt)
	assert.Equal(t, "2", string(second.Content))
}

func TestStore_Update(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Save(ctx, "cfg", json.RawMessage(`{"a":1}`), "designer", "before")
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, "cfg", json.RawMessage(`{"a":2}`), nil))
	got, err := s.Get(ctx, "cfg")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, string(got.Content))
	assert.Equal(t, "before", got.Description)
	assert.Equal(t, "designer", got.Type)

	desc := "after"
	require.NoError(t, s.Update(ctx, "cfg", nil, &desc))
	got, err = s.Get(ctx, "cfg")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, string(got.Content))
	assert.Equal(t, "after", got.Description)

	err = s.Update(ctx, "missing", json.RawMessage(`1`), nil)
	assert.True(t, stderrors.Is(err, errors.ErrTemplateNotFound))

	err = s.Update(ctx, "cfg", json.RawMessage(`{`), nil)
	assert.True(t, stderrors.Is(err, errors.ErrInvalidJSON))
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Save(ctx, "gone", json.RawMessage(`[]`), "", "")
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "gone"))

	_, err = s.Get(ctx, "gone")
	assert.True(t, stderrors.Is(err, errors.ErrTemplateNotFound))
	assert.True(t, stderrors.Is(s.Delete(ctx, "gone"), errors.ErrTemplateNotFound))
}

func TestStore_RejectsUnsafeNames(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Raw(ctx, "../secret")
	assert.True(t, stderrors.Is(err, errors.ErrTemplateNotFound))
	assert.True(t, stderrors.Is(s.Delete(ctx, "a/b"), errors.ErrTemplateNotFound))
}

func TestStore_ListToleratesCorruptFiles(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, os.MkdirAll(s.Dir(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "broken.json"), []byte("{nope"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("skip"), 0o644))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "broken", list[0].Name)
	assert.Equal(t, DefaultType, list[0].Type)
	assert.Empty(t, list[0].Description)
}

func TestStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := newTestStore(t)

	_, err := s.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.Save(ctx, "x", json.RawMessage(`1`), "", "")
	assert.ErrorIs(t, err, context.Canceled)
}
