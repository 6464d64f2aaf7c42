package idx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/taskboard/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNewAndParse(t *testing.T) {
	id := idx.New()
	require.Len(t, id.String(), 26)
	require.False(t, id.IsZero())

	parsed, err := idx.Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	t.Run("lowercase is normalised", func(t *testing.T) {
		parsed, err := idx.Parse(strings.ToLower(id.String()))
		require.NoError(t, err)
		require.Equal(t, id, parsed)
	})
}

func TestParseInvalid(t *testing.T) {
	for _, s := range []string{"", "   ", "not-a-ulid", "01ARZ3NDEKTSV4RRFFQ69G5FA", "8ZZZZZZZZZZZZZZZZZZZZZZZZZ"} {
		_, err := idx.Parse(s)
		require.ErrorIs(t, err, idx.ErrInvalid, s)
	}
}

func TestMonotonicOrdering(t *testing.T) {
	at := time.Unix(1700000000, 0).UTC()
	prev := idx.NewAt(at)
	for range 100 {
		next := idx.NewAt(at)
		require.Less(t, prev.String(), next.String())
		prev = next
	}
}

func TestTimeExtraction(t *testing.T) {
	tm := time.Unix(1700000000, 0).UTC()
	require.Equal(t, tm, idx.NewAt(tm).Time())
	require.True(t, idx.Zero.Time().IsZero())
}

func TestValueScan(t *testing.T) {
	id := idx.New()

	v, err := id.Value()
	require.NoError(t, err)

	var got idx.ID
	require.NoError(t, got.Scan(v))
	require.Equal(t, id, got)

	require.NoError(t, got.Scan([]byte(id.String())))
	require.Equal(t, id, got)

	require.NoError(t, got.Scan(nil))
	require.True(t, got.IsZero())

	require.Error(t, got.Scan(42))
	require.ErrorIs(t, got.Scan("bogus"), idx.ErrInvalid)
}
