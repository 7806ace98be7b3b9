package blob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		version int
		ext     string
		wantErr bool
	}{
		{"abcd1234.jpg", "abcd1234", 1, "jpg", false},
		{"abcd1234_v2.jpg", "abcd1234", 2, "jpg", false},
		{"abcd1234_v10.png", "abcd1234", 10, "png", false},
		{"custom_collection_004.jpg", "custom_collection_004", 1, "jpg", false},
		{"custom_collection_004_v3.jpg", "custom_collection_004", 3, "jpg", false},
		{"a_v2_v3.jpg", "a_v2", 3, "jpg", false},
		{"", "", 0, "", true},
		{"noext", "", 0, "", true},
		{".jpg", "", 0, "", true},
		{"../escape.jpg", "", 0, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, version, ext, err := ParseName(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.base, base)
			assert.Equal(t, tt.version, version)
			assert.Equal(t, tt.ext, ext)
		})
	}
}

func TestFormatName(t *testing.T) {
	assert.Equal(t, "abcd.jpg", FormatName("abcd", 1, "jpg"))
	assert.Equal(t, "abcd.jpg", FormatName("abcd", 0, "jpg"))
	assert.Equal(t, "abcd_v2.jpg", FormatName("abcd", 2, "jpg"))
}

func TestNextVersion(t *testing.T) {
	next, err := NextVersion("abcd.jpg", "")
	require.NoError(t, err)
	assert.Equal(t, "abcd_v2.jpg", next)

	next, err = NextVersion("abcd_v2.jpg", "")
	require.NoError(t, err)
	assert.Equal(t, "abcd_v3.jpg", next)

	// Extension can change between versions.
	next, err = NextVersion("abcd_v2.jpg", "png")
	require.NoError(t, err)
	assert.Equal(t, "abcd_v3.png", next)

	_, err = NextVersion("not a name", "")
	require.Error(t, err)
}

func TestNameRoundTrip(t *testing.T) {
	base := NewBase([]byte("some image bytes"))
	require.Len(t, base, 16)
	name := FormatName(base, 1, "jpg")
	gotBase, gotVersion, gotExt, err := ParseName(name)
	require.NoError(t, err)
	assert.Equal(t, base, gotBase)
	assert.Equal(t, 1, gotVersion)
	assert.Equal(t, "jpg", gotExt)

	bumped, err := NextVersion(name, "")
	require.NoError(t, err)
	gotBase, gotVersion, _, err = ParseName(bumped)
	require.NoError(t, err)
	assert.Equal(t, base, gotBase)
	assert.Equal(t, 2, gotVersion)
}

func TestNewBaseIsContentDerived(t *testing.T) {
	assert.Equal(t, NewBase([]byte("x")), NewBase([]byte("x")))
	assert.NotEqual(t, NewBase([]byte("x")), NewBase([]byte("y")))
}
