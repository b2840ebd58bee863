package collision

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Matrix lists the layer pairs allowed to collide. Pairs are unordered.
// A nil Matrix allows every pair; an empty non-nil Matrix allows none.
type Matrix [][2]string

func (m Matrix) Allows(a, b string) bool {
	if m == nil {
		return true
	}
	for _, row := range m {
		if (row[0] == a && row[1] == b) || (row[0] == b && row[1] == a) {
			return true
		}
	}
	return false
}

// UnmarshalYAML decodes a sequence of two-element sequences.
func (m *Matrix) UnmarshalYAML(value *yaml.Node) error {
	var rows [][]string
	if err := value.Decode(&rows); err != nil {
		return fmt.Errorf("collision matrix: %w", err)
	}
	out := make(Matrix, 0, len(rows))
	for i, row := range rows {
		if len(row) != 2 {
			return fmt.Errorf("collision matrix: row %d has %d layers, want 2", i, len(row))
		}
		out = append(out, [2]string{row[0], row[1]})
	}
	*m = out
	return nil
}
