package pq

import (
	"slices"

	"github.com/dhamidi/pqls/pq/parser"
)

// Language constants are identifiers that act as keywords in one position.
const (
	ConstantNullable = "nullable"
	ConstantOptional = "optional"
)

var expressionKeywords = []string{
	"each", "error", "false", "if", "let", "not", "true", "try", "type",
}

// operatorKeywords may follow a complete expression.
var operatorKeywords = []string{"and", "as", "is", "meta", "or"}

// ExpressionKeywords returns the keywords that can start an expression.
func ExpressionKeywords() []string {
	return slices.Clone(expressionKeywords)
}

// OperatorKeywords returns the keyword forms of the binary operators.
func OperatorKeywords() []string {
	return slices.Clone(operatorKeywords)
}

func LanguageConstants() []string {
	return []string{ConstantNullable, ConstantOptional}
}

// PrimitiveTypes returns the primitive type names in alphabetical order.
func PrimitiveTypes() []string {
	return parser.PrimitiveTypes()
}

func withKeywords(base []string, extra ...string) []string {
	out := slices.Concat(base, extra)
	slices.Sort(out)
	return out
}
