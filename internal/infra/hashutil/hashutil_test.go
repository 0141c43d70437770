package hashutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plasma/internal/domain"
)

func TestHashList(t *testing.T) {
	calc := domain.MetadataDocument{Name: "calculator", Description: "A calculator tool"}
	echo := domain.MetadataDocument{Name: "echo", Description: "Echoes input"}

	tests := []struct {
		name     string
		list1    []domain.MetadataDocument
		list2    []domain.MetadataDocument
		sameHash bool
	}{
		{
			name:     "identical lists produce same hash",
			list1:    []domain.MetadataDocument{calc, echo},
			list2:    []domain.MetadataDocument{calc, echo},
			sameHash: true,
		},
		{
			name:     "different order produces different hash",
			list1:    []domain.MetadataDocument{calc, echo},
			list2:    []domain.MetadataDocument{echo, calc},
			sameHash: false,
		},
		{
			name:     "description change produces different hash",
			list1:    []domain.MetadataDocument{calc},
			list2:    []domain.MetadataDocument{{Name: "calculator", Description: domain.PlaceholderDescription}},
			sameHash: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h1, err := HashList(tt.list1)
			require.NoError(t, err)
			h2, err := HashList(tt.list2)
			require.NoError(t, err)
			if tt.sameHash {
				require.Equal(t, h1, h2)
			} else {
				require.NotEqual(t, h1, h2)
			}
		})
	}
}

func TestListETag(t *testing.T) {
	require.Len(t, ListETag[string](zap.NewNop(), "tool", nil), 64)
	require.Empty(t, ListETag(zap.NewNop(), "broken", []float64{math.NaN()}))
}

func TestContentHash(t *testing.T) {
	require.Equal(t, ContentHash([]byte("a")), ContentHash([]byte("a")))
	require.NotEqual(t, ContentHash([]byte("a")), ContentHash([]byte("b")))
	require.Len(t, ContentHash(nil), 16)
}
