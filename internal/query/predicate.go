// Package query builds immutable, storage-agnostic filter predicates
// from listing parameters and compiles them for GORM. Services compose
// predicates; only Apply knows about SQL.
package query

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Operator enumerates the typed field comparisons a predicate can hold.
type Operator int

const (
	OpEq Operator = iota
	OpNe
	OpIn
	OpNotIn
	OpContains // case-insensitive substring
	OpPrefix   // case-insensitive prefix
	OpIEq      // case-insensitive equality
)

// Cond is a single field comparison.
type Cond struct {
	Field string
	Op    Operator
	Value interface{}
}

// Predicate is a conjunction/disjunction tree over conditions. The
// zero value matches everything.
type Predicate struct {
	cond *Cond
	all  []Predicate
	any  []Predicate
}

// IsZero reports whether the predicate constrains nothing.
func (p Predicate) IsZero() bool {
	return p.cond == nil && len(p.all) == 0 && len(p.any) == 0
}

// Eq matches rows whose field equals value.
func Eq(field string, value interface{}) Predicate {
	return Predicate{cond: &Cond{Field: field, Op: OpEq, Value: value}}
}

// Ne matches rows whose field differs from value.
func Ne(field string, value interface{}) Predicate {
	return Predicate{cond: &Cond{Field: field, Op: OpNe, Value: value}}
}

// In matches rows whose field is one of values.
func In(field string, values []string) Predicate {
	return Predicate{cond: &Cond{Field: field, Op: OpIn, Value: values}}
}

// NotIn matches rows whose field is none of values.
func NotIn(field string, values []string) Predicate {
	return Predicate{cond: &Cond{Field: field, Op: OpNotIn, Value: values}}
}

// Contains matches rows whose field contains term, case-insensitively.
func Contains(field, term string) Predicate {
	return Predicate{cond: &Cond{Field: field, Op: OpContains, Value: term}}
}

// Prefix matches rows whose field starts with term, case-insensitively.
func Prefix(field, term string) Predicate {
	return Predicate{cond: &Cond{Field: field, Op: OpPrefix, Value: term}}
}

// IEq matches rows whose field equals value, case-insensitively.
func IEq(field, value string) Predicate {
	return Predicate{cond: &Cond{Field: field, Op: OpIEq, Value: value}}
}

// And combines predicates into a conjunction, skipping zero values.
func And(preds ...Predicate) Predicate {
	kept := prune(preds)
	if len(kept) == 1 {
		return kept[0]
	}
	return Predicate{all: kept}
}

// Or combines predicates into a disjunction, skipping zero values.
func Or(preds ...Predicate) Predicate {
	kept := prune(preds)
	if len(kept) == 1 {
		return kept[0]
	}
	return Predicate{any: kept}
}

func prune(preds []Predicate) []Predicate {
	kept := make([]Predicate, 0, len(preds))
	for _, p := range preds {
		if !p.IsZero() {
			kept = append(kept, p)
		}
	}
	return kept
}

// Apply compiles the predicate onto a GORM query. Containment and
// prefix matches render as LOWER(...) LIKE so postgres and sqlite
// behave identically.
func (p Predicate) Apply(db *gorm.DB) *gorm.DB {
	if p.IsZero() {
		return db
	}
	sql, args := p.compile()
	return db.Where(sql, args...)
}

func (p Predicate) compile() (string, []interface{}) {
	switch {
	case p.cond != nil:
		return p.cond.compile()
	case len(p.all) > 0:
		return joinClauses(p.all, " AND ")
	default:
		return joinClauses(p.any, " OR ")
	}
}

func joinClauses(preds []Predicate, sep string) (string, []interface{}) {
	clauses := make([]string, 0, len(preds))
	var args []interface{}
	for _, sub := range preds {
		sql, subArgs := sub.compile()
		clauses = append(clauses, "("+sql+")")
		args = append(args, subArgs...)
	}
	return strings.Join(clauses, sep), args
}

func (c *Cond) compile() (string, []interface{}) {
	switch c.Op {
	case OpEq:
		return c.Field + " = ?", []interface{}{c.Value}
	case OpNe:
		return c.Field + " <> ?", []interface{}{c.Value}
	case OpIn:
		return c.Field + " IN ?", []interface{}{c.Value}
	case OpNotIn:
		return c.Field + " NOT IN ?", []interface{}{c.Value}
	case OpContains:
		term := strings.ToLower(fmt.Sprintf("%v", c.Value))
		return "LOWER(" + c.Field + ") LIKE ?", []interface{}{"%" + term + "%"}
	case OpPrefix:
		term := strings.ToLower(fmt.Sprintf("%v", c.Value))
		return "LOWER(" + c.Field + ") LIKE ?", []interface{}{term + "%"}
	case OpIEq:
		term := strings.ToLower(fmt.Sprintf("%v", c.Value))
		return "LOWER(" + c.Field + ") = ?", []interface{}{term}
	default:
		return "1 = 1", nil
	}
}
