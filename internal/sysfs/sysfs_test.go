package sysfs_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mutker/tuxedoctl/internal/errors"
	"codeberg.org/mutker/tuxedoctl/internal/sysfs"
)

func newMemFS(t *testing.T, files map[string]string) *sysfs.FS {
	t.Helper()

	base := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(base, path, []byte(content), 0o644))
	}

	return sysfs.NewFromFs(base)
}

func TestReadStringTrimsWhitespace(t *testing.T) {
	fs := newMemFS(t, map[string]string{
		"/sys/class/hwmon/hwmon0/name": "coretemp\n",
	})

	value, err := fs.ReadString("/sys/class/hwmon/hwmon0/name")
	require.NoError(t, err)
	assert.Equal(t, "coretemp", value)
}

func TestReadInt(t *testing.T) {
	fs := newMemFS(t, map[string]string{
		"/sys/class/hwmon/hwmon0/temp1_input": "54000\n",
		"/sys/class/hwmon/hwmon0/temp2_input": "not a number",
	})

	value, err := fs.ReadInt("/sys/class/hwmon/hwmon0/temp1_input")
	require.NoError(t, err)
	assert.Equal(t, 54000, value)

	_, err = fs.ReadInt("/sys/class/hwmon/hwmon0/temp2_input")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrParseFailure))
}

func TestMissingNodeIsUnavailable(t *testing.T) {
	fs := newMemFS(t, nil)

	_, err := fs.ReadString("/sys/devices/platform/tuxedo_io/fan1_manual_speed")
	require.Error(t, err)
	assert.True(t, sysfs.IsUnavailable(err))
	assert.False(t, sysfs.IsPermissionDenied(err))
}

func TestDeniedWriteIsPermissionDenied(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "/sys/node", []byte("0"), 0o644))

	fs := sysfs.NewFromFs(afero.NewReadOnlyFs(base))

	err := fs.WriteInt("/sys/node", 1)
	require.Error(t, err)
	assert.True(t, sysfs.IsPermissionDenied(err))
}

func TestWriteReadRoundTrip(t *testing.T) {
	fs := newMemFS(t, nil)

	require.NoError(t, fs.WriteInt("/sys/node", 128))

	value, err := fs.ReadInt("/sys/node")
	require.NoError(t, err)
	assert.Equal(t, 128, value)
}

func TestExists(t *testing.T) {
	fs := newMemFS(t, map[string]string{"/sys/present": "1"})

	assert.True(t, fs.Exists("/sys/present"))
	assert.False(t, fs.Exists("/sys/absent"))
}
