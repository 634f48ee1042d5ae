package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_HarmonizesColumns(t *testing.T) {
	raws := []Raw{
		{DivisionID: 2, Fields: map[string]any{
			"playerId":   float64(55),
			"PlayerName": "Smith, Alice",
			"Age":        float64(34),
			"Rating":     "4.25",
			"Ranking":    float64(1),
		}},
		{DivisionID: 1, Fields: map[string]any{
			"first_name": "Bob",
			"last_name":  "Jones",
			"age":        41,
			"rating":     3.9,
			"rank":       "7",
			"division":   "Masters",
		}},
	}

	got := Normalize(raws, DefaultDivisionLabels())
	require.Len(t, got, 2)

	assert.Equal(t, Ranking{
		PlayerID:   55,
		PlayerName: "Smith, Alice",
		FirstName:  "Alice",
		LastName:   "Smith",
		Age:        34,
		Rating:     4.25,
		Ranking:    1,
		Division:   "All Women",
		DivisionID: 2,
	}, got[0])

	assert.Equal(t, "Jones, Bob", got[1].PlayerName)
	assert.Equal(t, 41, got[1].Age)
	assert.Equal(t, 7, got[1].Ranking)
	assert.Equal(t, "Masters", got[1].Division)
}

func TestNormalize_EveryRowHasDivision(t *testing.T) {
	got := Normalize([]Raw{
		{DivisionID: 1, Fields: map[string]any{"name": "Cher"}},
		{DivisionID: 2, Fields: map[string]any{}},
	}, DefaultDivisionLabels())

	for _, item := range got {
		assert.NotEmpty(t, item.Division)
	}
	assert.Equal(t, "Cher", got[0].LastName)

	groups := ByDivision(got)
	assert.Len(t, groups["All Men"], 1)
	assert.Len(t, groups["All Women"], 1)
}
