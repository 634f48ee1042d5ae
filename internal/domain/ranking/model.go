package ranking

// Raw is one ranking row as returned by the provider. Column names vary in
// casing between API revisions, so the row is kept as an untyped map until
// Normalize harmonizes it.
type Raw struct {
	DivisionID int            `json:"division_id"`
	Page       int            `json:"page"`
	Fields     map[string]any `json:"fields"`
}

// Ranking is a player's current standing in one division.
type Ranking struct {
	PlayerID   int64   `json:"player_id,omitempty"`
	PlayerName string  `json:"player_name"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Age        int     `json:"age,omitempty"`
	Rating     float64 `json:"rating"`
	Ranking    int     `json:"ranking"`
	Division   string  `json:"division"`
	DivisionID int     `json:"division_id"`
}

// DefaultDivisionLabels names the two divisions swept by default.
func DefaultDivisionLabels() map[int]string {
	return map[int]string{
		1: "All Men",
		2: "All Women",
	}
}
