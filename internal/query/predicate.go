package query

import (
	"strconv"
	"strings"
)

// Predicate is a node of a WHERE / ON tree.
// Left-hand sides are trusted expressions owned by this package; values are always bound.
type Predicate interface {
	render(b *binder) string
}

// binder collects positional arguments while a statement is rendered.
type binder struct {
	args []any
}

func (b *binder) bind(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// Eq matches Expr = Value.
type Eq struct {
	Expr  string
	Value any
}

func (p Eq) render(b *binder) string { return p.Expr + " = " + b.bind(p.Value) }

// In matches Expr against a list of values.
type In struct {
	Expr   string
	Values []any
}

func (p In) render(b *binder) string {
	if len(p.Values) == 0 {
		return "FALSE"
	}
	ph := make([]string, len(p.Values))
	for i, v := range p.Values {
		ph[i] = b.bind(v)
	}
	return p.Expr + " IN (" + strings.Join(ph, ", ") + ")"
}

// ColEq compares two trusted expressions for equality.
type ColEq struct {
	Left, Right string
}

func (p ColEq) render(*binder) string { return p.Left + " = " + p.Right }

// ColNe compares two trusted expressions for inequality.
type ColNe struct {
	Left, Right string
}

func (p ColNe) render(*binder) string { return p.Left + " <> " + p.Right }

// And is a conjunction; an empty And is TRUE.
type And []Predicate

func (p And) render(b *binder) string { return join(p, " AND ", "TRUE", b) }

// Or is a disjunction; an empty Or is FALSE.
type Or []Predicate

func (p Or) render(b *binder) string { return join(p, " OR ", "FALSE", b) }

// Exists is a correlated existence check over another table.
type Exists struct {
	Table string
	Alias string
	Where Predicate
}

func (p Exists) render(b *binder) string {
	where := "TRUE"
	if p.Where != nil {
		where = p.Where.render(b)
	}
	return "EXISTS (SELECT 1 FROM " + p.Table + " " + p.Alias + " WHERE " + where + ")"
}

func join(ps []Predicate, sep, empty string, b *binder) string {
	parts := make([]string, 0, len(ps))
	for _, p := range ps {
		if p == nil {
			continue
		}
		parts = append(parts, p.render(b))
	}
	switch len(parts) {
	case 0:
		return empty
	case 1:
		return parts[0]
	default:
		return "(" + strings.Join(parts, sep) + ")"
	}
}

// Walk visits p and all of its children depth-first.
func Walk(p Predicate, fn func(Predicate)) {
	if p == nil {
		return
	}
	fn(p)
	switch n := p.(type) {
	case And:
		for _, c := range n {
			Walk(c, fn)
		}
	case Or:
		for _, c := range n {
			Walk(c, fn)
		}
	case Exists:
		Walk(n.Where, fn)
	}
}

// BoundValue returns the value an Eq node binds for expr anywhere in p.
func BoundValue(p Predicate, expr string) (any, bool) {
	var (
		out   any
		found bool
	)
	Walk(p, func(n Predicate) {
		if eq, ok := n.(Eq); ok && !found && eq.Expr == expr {
			out, found = eq.Value, true
		}
	})
	return out, found
}
