package repository

import (
	"errors"
	"strings"
)

// ErrNoFields is returned when a partial update carries no recognized field.
var ErrNoFields = errors.New("no fields to update")

// setBuilder accumulates column assignments for a partial UPDATE. Values are
// only ever bound as parameters; column names come from this package.
type setBuilder struct {
	cols []string
	args []any
}

func (b *setBuilder) set(col string, v any) {
	b.cols = append(b.cols, col+" = ?")
	b.args = append(b.args, v)
}

// setRaw adds an assignment whose right-hand side is a SQL expression with no parameters.
func (b *setBuilder) setRaw(col, expr string) {
	b.cols = append(b.cols, col+" = "+expr)
}

func (b *setBuilder) empty() bool { return len(b.args) == 0 }

// build returns `UPDATE table SET ... WHERE id = ?` and its args.
// It fails with ErrNoFields when nothing was set.
func (b *setBuilder) build(table string, id int64) (string, []any, error) {
	if b.empty() {
		return "", nil, ErrNoFields
	}
	query := "UPDATE " + table + " SET " + strings.Join(b.cols, ", ") + " WHERE id = ?"
	args := append(append([]any{}, b.args...), id)
	return query, args, nil
}
