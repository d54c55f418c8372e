package safefileio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// safeTempDir creates a temporary directory and resolves any symlinks in its path
// to ensure consistent behavior across different environments.
func safeTempDir(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	realPath, err := filepath.EvalSymlinks(tempDir)
	require.NoError(t, err, "Failed to resolve symlinks in temp dir")
	return realPath
}

func fileSystems() map[string]FileSystem {
	return map[string]FileSystem{
		"default":  NewFileSystem(FileSystemConfig{}),
		"fallback": NewFileSystem(FileSystemConfig{DisableOpenat2: true}),
	}
}

func TestSafeOpenFile(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, dir string) string
		errType error
		wantErr bool
	}{
		{
			name: "regular file",
			setup: func(t *testing.T, dir string) string {
				path := filepath.Join(dir, "plain")
				require.NoError(t, os.WriteFile(path, []byte("content"), 0o600))
				return path
			},
		},
		{
			name: "final component is a symlink",
			setup: func(t *testing.T, dir string) string {
				target := filepath.Join(dir, "target")
				require.NoError(t, os.WriteFile(target, []byte("content"), 0o600))
				link := filepath.Join(dir, "link")
				require.NoError(t, os.Symlink(target, link))
				return link
			},
			wantErr: true,
			errType: ErrIsSymlink,
		},
		{
			name: "parent directory is a symlink",
			setup: func(t *testing.T, dir string) string {
				realDir := filepath.Join(dir, "real")
				require.NoError(t, os.Mkdir(realDir, 0o755))
				require.NoError(t, os.WriteFile(filepath.Join(realDir, "file"), []byte("content"), 0o600))
				linkDir := filepath.Join(dir, "linkdir")
				require.NoError(t, os.Symlink(realDir, linkDir))
				return filepath.Join(linkDir, "file")
			},
			wantErr: true,
			errType: ErrIsSymlink,
		},
		{
			name: "missing file",
			setup: func(_ *testing.T, dir string) string {
				return filepath.Join(dir, "missing")
			},
			wantErr: true,
			errType: os.ErrNotExist,
		},
	}

	for fsName, fs := range fileSystems() {
		for _, tt := range tests {
			t.Run(fsName+"/"+tt.name, func(t *testing.T) {
				path := tt.setup(t, safeTempDir(t))

				f, err := fs.SafeOpenFile(path, os.O_RDONLY, 0)
				if tt.wantErr {
					require.Error(t, err)
					assert.ErrorIs(t, err, tt.errType)
					return
				}
				require.NoError(t, err)
				t.Cleanup(func() { _ = f.Close() })

				buf := make([]byte, 4)
				n, err := f.ReadAt(buf, 3)
				require.NoError(t, err)
				assert.Equal(t, "tent", string(buf[:n]))
			})
		}
	}
}

func TestSafeOpenFile_CreateExclusive(t *testing.T) {
	for fsName, fs := range fileSystems() {
		t.Run(fsName, func(t *testing.T) {
			path := filepath.Join(safeTempDir(t), "new")

			f, err := fs.SafeOpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
			require.NoError(t, err)
			_, err = f.Write([]byte("x"))
			require.NoError(t, err)
			require.NoError(t, f.Close())

			_, err = fs.SafeOpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
			assert.ErrorIs(t, err, ErrFileExists)
		})
	}
}

func TestSafeReadFile(t *testing.T) {
	dir := safeTempDir(t)

	t.Run("reads content", func(t *testing.T) {
		path := filepath.Join(dir, "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("[scan]\n"), 0o600))

		content, err := SafeReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "[scan]\n", string(content))
	})

	t.Run("rejects directory", func(t *testing.T) {
		sub := filepath.Join(dir, "sub")
		require.NoError(t, os.Mkdir(sub, 0o755))

		_, err := SafeReadFile(sub)
		assert.ErrorIs(t, err, ErrInvalidFilePath)
	})

	t.Run("rejects symlink", func(t *testing.T) {
		target := filepath.Join(dir, "real.toml")
		require.NoError(t, os.WriteFile(target, []byte("x"), 0o600))
		link := filepath.Join(dir, "link.toml")
		require.NoError(t, os.Symlink(target, link))

		_, err := SafeReadFile(link)
		assert.ErrorIs(t, err, ErrIsSymlink)
	})
}

func TestVerifyPathComponents(t *testing.T) {
	dir := safeTempDir(t)
	require.NoError(t, verifyPathComponents(filepath.Join(dir, "a", "b", "c")))

	require.NoError(t, os.Symlink(dir, filepath.Join(dir, "loop")))
	err := verifyPathComponents(filepath.Join(dir, "loop", "file"))
	assert.ErrorIs(t, err, ErrIsSymlink)
}
