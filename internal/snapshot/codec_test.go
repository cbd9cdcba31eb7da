package snapshot

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarkoPoloResearchLab/lending/pkg/library"
)

func sampleSnapshot() library.SystemSnapshot {
	rate := decimal.RequireFromString("50")
	return library.SystemSnapshot{
		LibraryID:         "4f0c3a0e-4b8e-4f57-9d55-0c5a9f2f3c11",
		LateFeePercentage: decimal.RequireFromString("12.5"),
		Books: []library.BookSnapshot{{
			Title:         "Dune",
			Authors:       []string{"Frank Herbert"},
			PublishedYear: 1965,
			Editions:      map[string]int{"2": 0, "1": 3},
			RentalFee:     decimal.RequireFromString("2.10"),
		}},
		Members: []library.MemberSnapshot{{
			Name:         "Carol",
			Balance:      decimal.RequireFromString("99.99"),
			FeePolicy:    "discounted",
			DiscountRate: &rate,
			Loans: []library.LoanSnapshot{{
				Title:   "Dune",
				Edition: "1",
				DueAt:   time.Date(2024, time.March, 1, 12, 0, 30, 0, time.UTC),
			}},
		}},
	}
}

func TestEncodeDecodeKeepsExactValues(t *testing.T) {
	t.Parallel()

	data, err := Encode(sampleSnapshot())
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	expected := sampleSnapshot()
	assert.Equal(t, expected.LibraryID, decoded.LibraryID)
	assert.True(t, expected.LateFeePercentage.Equal(decoded.LateFeePercentage))
	require.Len(t, decoded.Books, 1)
	assert.Equal(t, expected.Books[0].Editions, decoded.Books[0].Editions)
	assert.Equal(t, "2.1", decoded.Books[0].RentalFee.String())
	require.Len(t, decoded.Members, 1)
	require.NotNil(t, decoded.Members[0].DiscountRate)
	assert.True(t, rateOf(decoded).Equal(decimal.NewFromInt(50)))
	assert.True(t, expected.Members[0].Loans[0].DueAt.Equal(decoded.Members[0].Loans[0].DueAt))

	restored, err := library.RestoreSystem(decoded)
	require.NoError(t, err)
	assert.Equal(t, expected.LibraryID, restored.ID().String())
}

func TestEncodeIsDeterministic(t *testing.T) {
	t.Parallel()

	first, err := Encode(sampleSnapshot())
	require.NoError(t, err)
	second, err := Encode(sampleSnapshot())
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestDecodeRejectsBadPayloads(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte("{not json"))
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = Decode([]byte(`{"version":7,"system":{}}`))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = Decode([]byte(`{"version":1,"system":{"late_fee_percentage":"abc"}}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func rateOf(snapshot library.SystemSnapshot) decimal.Decimal {
	return *snapshot.Members[0].DiscountRate
}
