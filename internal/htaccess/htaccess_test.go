package htaccess

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdminDirName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/var/www/shop/admin123", "admin123"},
		{`C:\www\shop\admin456`, "admin456"},
		{"admin", "admin"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, AdminDirName(tt.in))
		})
	}
}

func TestSection(t *testing.T) {
	s := Section("admin123")
	require.True(t, strings.HasPrefix(s, "\n# start ~ module watermark section\n"))
	require.True(t, strings.HasSuffix(s, "# end ~ module watermark section\n"))
	require.Contains(t, s, `RewriteCond expr "! %{HTTP_REFERER} -strmatch '*://%{HTTP_HOST}*/admin123/*'"`)
	require.Contains(t, s, `RewriteRule [0-9/]+/[0-9]+\.jpg$ - [F]`)
}

func TestWriteRemoveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".htaccess")
	original := "# shop rules\nRewriteEngine on\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0o644))

	require.NoError(t, WriteSection(path, "admin1"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), Section("admin1")))
	require.True(t, strings.HasSuffix(string(data), original))

	require.NoError(t, RemoveSection(path))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, original, string(data))

	require.ErrorIs(t, RemoveSection(path), ErrSectionNotFound)
}

func TestRewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".htaccess")

	require.NoError(t, Rewrite(path, "old"))
	require.NoError(t, Rewrite(path, "new"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(string(data), "# start ~ module watermark section"))
	require.Contains(t, string(data), "/new/*")
	require.NotContains(t, string(data), "/old/*")
}

func TestRemoveSection_MissingFile(t *testing.T) {
	require.NoError(t, RemoveSection(filepath.Join(t.TempDir(), "absent")))
}
