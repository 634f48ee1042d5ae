package ranking

import (
	"math"
	"strconv"
	"strings"
)

var (
	playerIDKeys   = []string{"playerid", "id"}
	playerNameKeys = []string{"playername", "name", "fullname"}
	firstNameKeys  = []string{"firstname", "first"}
	lastNameKeys   = []string{"lastname", "last"}
	ageKeys        = []string{"age"}
	ratingKeys     = []string{"rating", "playerrating"}
	rankingKeys    = []string{"ranking", "rank", "position"}
	divisionKeys   = []string{"division", "divisionname"}

	keyFolder = strings.NewReplacer("_", "", " ", "", "-", "")
)

// Normalize harmonizes ranking columns. No rows are filtered; a row without
// a division column takes the label configured for its division id.
func Normalize(raws []Raw, labels map[int]string) []Ranking {
	out := make([]Ranking, 0, len(raws))
	for _, raw := range raws {
		cols := foldKeys(raw.Fields)
		item := Ranking{
			PlayerID:   int64(number(cols, playerIDKeys)),
			PlayerName: text(cols, playerNameKeys),
			FirstName:  text(cols, firstNameKeys),
			LastName:   text(cols, lastNameKeys),
			Age:        int(number(cols, ageKeys)),
			Rating:     number(cols, ratingKeys),
			Ranking:    int(number(cols, rankingKeys)),
			Division:   text(cols, divisionKeys),
			DivisionID: raw.DivisionID,
		}

		if item.FirstName == "" && item.LastName == "" && item.PlayerName != "" {
			item.FirstName, item.LastName = splitName(item.PlayerName)
		}
		if item.PlayerName == "" {
			item.PlayerName = strings.TrimSpace(item.LastName + ", " + item.FirstName)
			item.PlayerName = strings.Trim(item.PlayerName, ", ")
		}
		if item.Division == "" {
			item.Division = labels[raw.DivisionID]
		}
		out = append(out, item)
	}
	return out
}

// ByDivision groups rankings by division label, keeping input order.
func ByDivision(items []Ranking) map[string][]Ranking {
	out := make(map[string][]Ranking)
	for _, item := range items {
		out[item.Division] = append(out[item.Division], item)
	}
	return out
}

func foldKeys(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		folded := strings.ToLower(keyFolder.Replace(key))
		if _, exists := out[folded]; !exists || value != nil {
			out[folded] = value
		}
	}
	return out
}

// splitName reads "Last, First".
func splitName(name string) (first, last string) {
	last, first, found := strings.Cut(name, ",")
	if !found {
		return "", strings.TrimSpace(name)
	}
	return strings.TrimSpace(first), strings.TrimSpace(last)
}

func text(cols map[string]any, keys []string) string {
	for _, key := range keys {
		switch v := cols[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func number(cols map[string]any, keys []string) float64 {
	for _, key := range keys {
		switch v := cols[key].(type) {
		case float64:
			if !math.IsNaN(v) {
				return v
			}
		case int:
			return float64(v)
		case int64:
			return float64(v)
		case string:
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return parsed
			}
		}
	}
	return 0
}
