package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ParamType is the data type of a template parameter.
type ParamType string

const (
	ParamUUID      ParamType = "UUID"
	ParamDecimal   ParamType = "DECIMAL"
	ParamString    ParamType = "STRING"
	ParamInteger   ParamType = "INTEGER"
	ParamBoolean   ParamType = "BOOLEAN"
	ParamDate      ParamType = "DATE"
	ParamTimestamp ParamType = "TIMESTAMP"
	ParamJSON      ParamType = "JSON"
)

// ParamDefinition declares a named, typed parameter of a template. Names are
// unique within a template and are referenced from entries via ParamRef
// expressions.
type ParamDefinition struct {
	Name string    `json:"name"`
	Type ParamType `json:"type"`
}

// TxParams holds concrete values bound to template parameters at posting
// time, or to a velocity control at attachment time.
type TxParams map[string]any

func NewTxParams() TxParams { return make(TxParams) }

func (p TxParams) SetUUID(name string, id uuid.UUID) TxParams {
	p[name] = id
	return p
}

func (p TxParams) SetDecimal(name string, d decimal.Decimal) TxParams {
	p[name] = d
	return p
}

func (p TxParams) SetString(name, s string) TxParams {
	p[name] = s
	return p
}

func (p TxParams) SetInt(name string, i int64) TxParams {
	p[name] = i
	return p
}

func (p TxParams) SetBool(name string, b bool) TxParams {
	p[name] = b
	return p
}

func (p TxParams) SetTime(name string, t time.Time) TxParams {
	p[name] = t
	return p
}

// CheckBinding verifies that a bound value matches the declared parameter
// type. It returns a SchemaError naming the parameter on mismatch.
func CheckBinding(def ParamDefinition, value any) error {
	ok := false
	switch def.Type {
	case ParamUUID:
		switch v := value.(type) {
		case uuid.UUID:
			ok = true
		case string:
			_, err := uuid.Parse(v)
			ok = err == nil
		}
	case ParamDecimal:
		switch v := value.(type) {
		case decimal.Decimal:
			ok = true
		case string:
			_, err := decimal.NewFromString(v)
			ok = err == nil
		}
	case ParamString:
		_, ok = value.(string)
	case ParamInteger:
		switch value.(type) {
		case int, int32, int64:
			ok = true
		}
	case ParamBoolean:
		_, ok = value.(bool)
	case ParamDate, ParamTimestamp:
		_, ok = value.(time.Time)
	case ParamJSON:
		ok = value != nil
	}
	if !ok {
		return &SchemaError{Ref: def.Name, Detail: "binding does not match declared type " + string(def.Type)}
	}
	return nil
}

// UUIDValue coerces a bound value to a uuid. Bindings may carry uuids either
// natively or as strings.
func UUIDValue(value any) (uuid.UUID, bool) {
	switch v := value.(type) {
	case uuid.UUID:
		return v, true
	case string:
		id, err := uuid.Parse(v)
		return id, err == nil
	}
	return uuid.Nil, false
}

// DecimalValue coerces a bound value to a decimal.
func DecimalValue(value any) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, true
	case string:
		d, err := decimal.NewFromString(v)
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(v), true
	case int64:
		return decimal.NewFromInt(v), true
	}
	return decimal.Decimal{}, false
}
