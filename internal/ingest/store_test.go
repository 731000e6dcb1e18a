package ingest

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoperat/centumbob/constants"
	"github.com/aoperat/centumbob/internal/common"
)

func newTestStore(t *testing.T) *ImageStore {
	t.Helper()
	s := NewImageStore(t.TempDir(), nil)
	s.now = func() time.Time { return time.UnixMilli(1767225600000) }
	s.newID = func() (string, error) { return "abcd1234", nil }
	return s
}

func TestImageStore_SaveAndRead(t *testing.T) {
	s := newTestStore(t)

	rel, err := s.Save("센텀 식당", "3/2~3/6", ".PNG", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "센텀_식당/3_2_3_6/image_1767225600000_abcd1234.png", rel)
	assert.True(t, s.Exists(rel))

	data, err := s.Read(rel)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	abs, err := s.Resolve(rel)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(abs, s.Root()))
	assert.Equal(t, filepath.Join(s.Root(), "센텀_식당", "3_2_3_6", "image_1767225600000_abcd1234.png"), abs)
}

func TestImageStore_SaveRejects(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Save("a", "b", ".pdf", []byte("x"))
	assert.ErrorIs(t, err, ErrUnsupportedExt)

	_, err = s.Save("a", "b", ".jpg", nil)
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = s.Save("a", "b", ".jpg", make([]byte, constants.MaxImageBytes+1))
	assert.ErrorIs(t, err, ErrImageTooLarge)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestImageStore_ResolveRejectsEscapes(t *testing.T) {
	s := newTestStore(t)
	for _, rel := range []string{"", "..", "../etc/passwd", "a/../../b", "/etc/passwd", `..\secret.png`} {
		_, err := s.Resolve(rel)
		assert.ErrorIs(t, err, ErrPathEscape, rel)
	}

	abs, err := s.Resolve("a/./b/../c.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Root(), "a", "c.png"), abs)
}

func TestImageStore_ReadMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Read("nope/x.png")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.False(t, s.Exists("nope/x.png"))
}
