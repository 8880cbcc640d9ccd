package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestExpressionValidate(t *testing.T) {
	declared := map[string]ParamType{
		"amount": ParamDecimal,
		"sender": ParamUUID,
	}

	tests := []struct {
		name    string
		expr    Expression
		wantErr error
	}{
		{name: "literal", expr: Lit("BTC")},
		{name: "declared param", expr: Param("amount")},
		{name: "function", expr: Fn(FnDate)},
		{name: "undeclared param", expr: Param("recipient"), wantErr: ErrSchema},
		{name: "empty function name", expr: Fn(""), wantErr: ErrSchema},
		{name: "zero expression", expr: Expression{}, wantErr: ErrSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.expr.Validate(declared)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestExpressionString(t *testing.T) {
	assert.Equal(t, "params.amount", Param("amount").String())
	assert.Equal(t, "date()", Fn(FnDate).String())
	assert.Equal(t, "BTC", Lit("BTC").String())
}

func TestCheckBinding(t *testing.T) {
	tests := []struct {
		name    string
		def     ParamDefinition
		value   any
		wantErr bool
	}{
		{name: "uuid native", def: ParamDefinition{Name: "id", Type: ParamUUID}, value: uuid.New()},
		{name: "uuid string", def: ParamDefinition{Name: "id", Type: ParamUUID}, value: uuid.New().String()},
		{name: "uuid garbage", def: ParamDefinition{Name: "id", Type: ParamUUID}, value: "nope", wantErr: true},
		{name: "decimal native", def: ParamDefinition{Name: "amount", Type: ParamDecimal}, value: decimal.NewFromInt(5)},
		{name: "decimal string", def: ParamDefinition{Name: "amount", Type: ParamDecimal}, value: "5.25"},
		{name: "decimal mismatch", def: ParamDefinition{Name: "amount", Type: ParamDecimal}, value: true, wantErr: true},
		{name: "string", def: ParamDefinition{Name: "memo", Type: ParamString}, value: "hello"},
		{name: "integer", def: ParamDefinition{Name: "n", Type: ParamInteger}, value: int64(3)},
		{name: "boolean", def: ParamDefinition{Name: "flag", Type: ParamBoolean}, value: false},
		{name: "date", def: ParamDefinition{Name: "when", Type: ParamDate}, value: time.Now()},
		{name: "date mismatch", def: ParamDefinition{Name: "when", Type: ParamDate}, value: "2024-01-02", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckBinding(tt.def, tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrSchema)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestEntrySignedAmount(t *testing.T) {
	amount := decimal.NewFromInt(10)
	debit := Entry{Direction: Debit, Amount: amount}
	credit := Entry{Direction: Credit, Amount: amount}

	assert.True(t, debit.SignedAmount().Equal(amount.Neg()))
	assert.True(t, credit.SignedAmount().Equal(amount))
}

func TestBalanceSettledAndAdd(t *testing.T) {
	a := Balance{Details: BalanceDetails{
		CrBalance: decimal.NewFromInt(100),
		DrBalance: decimal.NewFromInt(30),
	}}
	b := Balance{Details: BalanceDetails{
		CrBalance: decimal.NewFromInt(50),
	}}

	assert.True(t, a.Settled().Equal(decimal.NewFromInt(70)))
	assert.True(t, a.Add(b).Settled().Equal(decimal.NewFromInt(120)))
}
