package models

import "fmt"

// ExprKind discriminates the expression union.
type ExprKind string

const (
	ExprLiteral ExprKind = "literal"
	ExprParam   ExprKind = "param"
	ExprFn      ExprKind = "fn"
)

// Expression is a symbolic value inside a template: a literal, a reference
// to a declared parameter, or a function evaluated by the engine at posting
// time (e.g. date). Templates carry expressions instead of free-text so that
// references can be validated when the template is built.
type Expression struct {
	Kind  ExprKind `json:"kind"`
	Name  string   `json:"name,omitempty"`
	Value any      `json:"value,omitempty"`
}

func Lit(value any) Expression { return Expression{Kind: ExprLiteral, Value: value} }

func Param(name string) Expression { return Expression{Kind: ExprParam, Name: name} }

func Fn(name string) Expression { return Expression{Kind: ExprFn, Name: name} }

// FnDate is the engine-evaluated current-date function.
const FnDate = "date"

// IsZero reports whether the expression was never set.
func (e Expression) IsZero() bool {
	return e.Kind == ""
}

// Validate checks that a param reference resolves to a declared parameter.
// Literals and functions always validate; unknown kinds do not.
func (e Expression) Validate(params map[string]ParamType) error {
	switch e.Kind {
	case ExprLiteral:
		return nil
	case ExprFn:
		if e.Name == "" {
			return &SchemaError{Detail: "function expression with empty name"}
		}
		return nil
	case ExprParam:
		if _, ok := params[e.Name]; !ok {
			return &SchemaError{Ref: e.Name, Detail: "reference to undeclared parameter"}
		}
		return nil
	}
	return &SchemaError{Detail: fmt.Sprintf("unknown expression kind %q", e.Kind)}
}

func (e Expression) String() string {
	switch e.Kind {
	case ExprParam:
		return "params." + e.Name
	case ExprFn:
		return e.Name + "()"
	default:
		return fmt.Sprintf("%v", e.Value)
	}
}
