package repository

import (
	"fmt"
	"strings"
)

// predicates composes a WHERE clause from column conditions. Column names
// come from constants in this package; values only ever travel as $n
// arguments, never as SQL text.
type predicates struct {
	clauses []string
	args    []any
}

func (p *predicates) bind(value any) string {
	p.args = append(p.args, value)
	return fmt.Sprintf("$%d", len(p.args))
}

func (p *predicates) eq(column string, value any) {
	p.clauses = append(p.clauses, column+" = "+p.bind(value))
}

func (p *predicates) neq(column string, value any) {
	p.clauses = append(p.clauses, column+" <> "+p.bind(value))
}

func (p *predicates) before(column string, value any) {
	p.clauses = append(p.clauses, column+" < "+p.bind(value))
}

func (p *predicates) notNull(column string) {
	p.clauses = append(p.clauses, column+" IS NOT NULL")
}

func (p *predicates) where() string {
	if len(p.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(p.clauses, " AND ")
}

// page appends LIMIT/OFFSET as bound arguments.
func (p *predicates) page(limit, offset int) string {
	out := ""
	if limit > 0 {
		out += " LIMIT " + p.bind(limit)
	}
	if offset > 0 {
		out += " OFFSET " + p.bind(offset)
	}
	return out
}
