package compress

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	payload := []byte(strings.Repeat("standard operating procedure\n", 200))

	for _, name := range []string{"gzip", "brotli", "lz4", "nop"} {
		t.Run(name, func(t *testing.T) {
			codec := FromName(name)

			encoded, err := codec.Encode(payload)
			require.NoError(t, err)

			decoded, err := codec.Decode(encoded)
			require.NoError(t, err)
			assert.Equal(t, payload, decoded)

			if name != "nop" {
				assert.Less(t, len(encoded), len(payload))
			}
		})
	}
}

func TestFromName_UnknownFallsBackToNop(t *testing.T) {
	codec := FromName("zstd")

	encoded, err := codec.Encode([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), encoded)
}
