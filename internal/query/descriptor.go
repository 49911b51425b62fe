// Package query turns typed statistics filters into query descriptors and
// renders descriptors into parameterized Postgres statements.
// Nothing here touches the database; execution happens in the repository layer.
package query

import (
	"strconv"
	"strings"

	"github.com/maxviazov/matchup-stats-service/internal/model"
)

// Column is one projected expression and the alias it is returned under.
type Column struct {
	Alias string
	Expr  string
}

// Join is an inner join against a trusted table reference.
type Join struct {
	Table string
	Alias string
	On    Predicate
}

// Order is one ORDER BY entry referencing a projection alias.
type Order struct {
	Alias string
	Dir   model.Direction
}

// Descriptor is the abstract form of a statistics query.
type Descriptor struct {
	QueryType  model.QueryType
	From       string
	Joins      []Join
	Projection []Column
	Where      Predicate
	GroupBy    []string
	OrderBy    []Order
	Limit      int // 0 means unlimited

	// Resolved request shape, echoed back in response metadata.
	Group     model.GroupBy
	Metric    string
	Direction model.Direction
}

// Fields returns the projection aliases in order.
func (d Descriptor) Fields() []string {
	out := make([]string, len(d.Projection))
	for i, c := range d.Projection {
		out[i] = c.Alias
	}
	return out
}

// HasField reports whether alias is projected.
func (d Descriptor) HasField(alias string) bool {
	for _, c := range d.Projection {
		if c.Alias == alias {
			return true
		}
	}
	return false
}

// Render produces the SQL text and its positional arguments.
func (d Descriptor) Render() (string, []any) {
	b := &binder{}
	var sb strings.Builder

	sb.WriteString("SELECT ")
	for i, c := range d.Projection {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c.Expr)
		sb.WriteString(" AS ")
		sb.WriteString(quoteIdent(c.Alias))
	}

	sb.WriteString(" FROM ")
	sb.WriteString(d.From)
	for _, j := range d.Joins {
		sb.WriteString(" JOIN ")
		sb.WriteString(j.Table)
		sb.WriteString(" ")
		sb.WriteString(j.Alias)
		sb.WriteString(" ON ")
		sb.WriteString(renderOrTrue(j.On, b))
	}

	if d.Where != nil {
		sb.WriteString(" WHERE ")
		sb.WriteString(d.Where.render(b))
	}

	if len(d.GroupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(d.GroupBy, ", "))
	}

	if len(d.OrderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		for i, o := range d.OrderBy {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(quoteIdent(o.Alias))
			if o.Dir == model.Asc {
				sb.WriteString(" ASC NULLS LAST")
			} else {
				sb.WriteString(" DESC NULLS LAST")
			}
		}
	}

	if d.Limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(b.bind(d.Limit))
	}

	return sb.String(), b.args
}

func renderOrTrue(p Predicate, b *binder) string {
	if p == nil {
		return "TRUE"
	}
	return p.render(b)
}

// quoteIdent quotes aliases so Postgres keeps their case.
func quoteIdent(s string) string {
	return strconv.Quote(s)
}
