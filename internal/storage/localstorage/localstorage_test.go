package localstorage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/UnendingLoop/ProductWatermark/internal/model"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_PutGetDelete(t *testing.T) {
	root := t.TempDir()
	s := New(root)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "1/2/12.jpg", 4, model.JPEG, strings.NewReader("data")))

	_, err := os.Stat(filepath.Join(root, "1", "2", "12.jpg"))
	require.NoError(t, err)

	r, ctype, err := s.Get(ctx, "1/2/12.jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.Equal(t, "data", string(data))
	require.Equal(t, model.JPEG, ctype)

	require.NoError(t, s.Delete(ctx, "1/2/12.jpg"))
	require.NoError(t, s.Delete(ctx, "1/2/12.jpg"))

	_, _, err = s.Get(ctx, "1/2/12.jpg")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLocalStorage_KeysStayInRoot(t *testing.T) {
	root := t.TempDir()
	s := New(root)

	require.NoError(t, s.Put(context.Background(), "../../escape.png", 1, model.PNG, strings.NewReader("x")))
	_, err := os.Stat(filepath.Join(root, "escape.png"))
	require.NoError(t, err)

	require.Error(t, s.Put(context.Background(), "", 0, "", strings.NewReader("")))
	require.Error(t, s.Put(context.Background(), "a.png", 0, "", nil))
}
