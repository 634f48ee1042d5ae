package calendar

import "sort"

// HeatCell is one (row, column) bucket of a Heatmap.
type HeatCell struct {
	Row    int `json:"row"`
	Column int `json:"column"`
	Value  int `json:"value"`
}

// Heatmap accumulates integer values over two calendar axes, e.g. year by
// month. Empty buckets are not stored.
type Heatmap struct {
	RowAxis    string `json:"row_axis"`
	ColumnAxis string `json:"column_axis"`
	cells      map[[2]int]int
}

func NewHeatmap(rowAxis, columnAxis string) *Heatmap {
	return &Heatmap{RowAxis: rowAxis, ColumnAxis: columnAxis, cells: make(map[[2]int]int)}
}

func (h *Heatmap) Add(row, column, value int) {
	h.cells[[2]int{row, column}] += value
}

func (h *Heatmap) Value(row, column int) int {
	return h.cells[[2]int{row, column}]
}

// Cells lists the buckets ordered by row then column.
func (h *Heatmap) Cells() []HeatCell {
	out := make([]HeatCell, 0, len(h.cells))
	for key, value := range h.cells {
		out = append(out, HeatCell{Row: key[0], Column: key[1], Value: value})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Column < out[j].Column
	})
	return out
}
