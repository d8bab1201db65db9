package parser

type NodeKind int

const (
	KindUnknown NodeKind = iota

	// Leaves
	KindConstant
	KindIdentifier
	KindGeneralizedIdentifier
	KindLiteralExpression
	KindPrimitiveType
	KindNotImplementedExpression

	// Wrappers
	KindArrayWrapper
	KindCsv

	// Documents
	KindSection
	KindSectionMember

	// Expressions
	KindLetExpression
	KindIfExpression
	KindEachExpression
	KindFunctionExpression
	KindErrorHandlingExpression
	KindOtherwiseExpression
	KindErrorRaisingExpression
	KindIdentifierExpression
	KindParenthesizedExpression
	KindRecordExpression
	KindListExpression
	KindRangeExpression
	KindUnaryExpression
	KindInvokeExpression
	KindItemAccessExpression
	KindFieldSelector
	KindFieldProjection
	KindIdentifierPairedExpression
	KindGeneralizedIdentifierPairedExpression

	// Binary operators
	KindArithmeticExpression
	KindEqualityExpression
	KindRelationalExpression
	KindLogicalExpression
	KindAsExpression
	KindIsExpression
	KindMetadataExpression
	KindNullCoalescingExpression

	// Parameters and types
	KindParameterList
	KindParameter
	KindAsType
	KindTypePrimaryType
	KindNullablePrimitiveType
	KindNullableType
	KindRecordType
	KindFieldSpecification
	KindListType
	KindFunctionType
	KindTableType
)

var nodeKindNames = map[NodeKind]string{
	KindUnknown:                               "Unknown",
	KindConstant:                              "Constant",
	KindIdentifier:                            "Identifier",
	KindGeneralizedIdentifier:                 "GeneralizedIdentifier",
	KindLiteralExpression:                     "LiteralExpression",
	KindPrimitiveType:                         "PrimitiveType",
	KindNotImplementedExpression:              "NotImplementedExpression",
	KindArrayWrapper:                          "ArrayWrapper",
	KindCsv:                                   "Csv",
	KindSection:                               "Section",
	KindSectionMember:                         "SectionMember",
	KindLetExpression:                         "LetExpression",
	KindIfExpression:                          "IfExpression",
	KindEachExpression:                        "EachExpression",
	KindFunctionExpression:                    "FunctionExpression",
	KindErrorHandlingExpression:               "ErrorHandlingExpression",
	KindOtherwiseExpression:                   "OtherwiseExpression",
	KindErrorRaisingExpression:                "ErrorRaisingExpression",
	KindIdentifierExpression:                  "IdentifierExpression",
	KindParenthesizedExpression:               "ParenthesizedExpression",
	KindRecordExpression:                      "RecordExpression",
	KindListExpression:                        "ListExpression",
	KindRangeExpression:                       "RangeExpression",
	KindUnaryExpression:                       "UnaryExpression",
	KindInvokeExpression:                      "InvokeExpression",
	KindItemAccessExpression:                  "ItemAccessExpression",
	KindFieldSelector:                         "FieldSelector",
	KindFieldProjection:                       "FieldProjection",
	KindIdentifierPairedExpression:            "IdentifierPairedExpression",
	KindGeneralizedIdentifierPairedExpression: "GeneralizedIdentifierPairedExpression",
	KindArithmeticExpression:                  "ArithmeticExpression",
	KindEqualityExpression:                    "EqualityExpression",
	KindRelationalExpression:                  "RelationalExpression",
	KindLogicalExpression:                     "LogicalExpression",
	KindAsExpression:                          "AsExpression",
	KindIsExpression:                          "IsExpression",
	KindMetadataExpression:                    "MetadataExpression",
	KindNullCoalescingExpression:              "NullCoalescingExpression",
	KindParameterList:                         "ParameterList",
	KindParameter:                             "Parameter",
	KindAsType:                                "AsType",
	KindTypePrimaryType:                       "TypePrimaryType",
	KindNullablePrimitiveType:                 "NullablePrimitiveType",
	KindNullableType:                          "NullableType",
	KindRecordType:                            "RecordType",
	KindFieldSpecification:                    "FieldSpecification",
	KindListType:                              "ListType",
	KindFunctionType:                          "FunctionType",
	KindTableType:                             "TableType",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsBinary reports whether k is built by wrapping a left operand.
func (k NodeKind) IsBinary() bool {
	return k >= KindArithmeticExpression && k <= KindNullCoalescingExpression
}

// Attribute indices. A child's Attribute is its grammatical slot within the
// parent, so optional slots that were not parsed leave gaps.
const (
	// Binary expressions
	AttrLeft     = 0
	AttrOperator = 1
	AttrRight    = 2

	// Csv
	AttrCsvNode  = 0
	AttrCsvComma = 1

	// Bracketed wrappers: record, list, parenthesized, parameter list
	AttrOpen    = 0
	AttrContent = 1
	AttrClose   = 2

	// Key/value pairs
	AttrKey    = 0
	AttrEquals = 1
	AttrValue  = 2

	// LetExpression
	AttrLetKeyword   = 0
	AttrLetVariables = 1
	AttrLetIn        = 2
	AttrLetBody      = 3

	// IfExpression
	AttrIfKeyword   = 0
	AttrIfCondition = 1
	AttrIfThen      = 2
	AttrIfTrue      = 3
	AttrIfElse      = 4
	AttrIfFalse     = 5

	// Each, error, type, unary, otherwise: keyword then operand
	AttrPrefix  = 0
	AttrOperand = 1

	// FunctionExpression
	AttrFunctionParameters = 0
	AttrFunctionReturnType = 1
	AttrFunctionArrow      = 2
	AttrFunctionBody       = 3

	// ErrorHandlingExpression
	AttrTryKeyword   = 0
	AttrTryProtected = 1
	AttrTryOtherwise = 2

	// IdentifierExpression
	AttrInclusive  = 0
	AttrIdentifier = 1

	// Parameter
	AttrParameterOptional = 0
	AttrParameterName     = 1
	AttrParameterType     = 2

	// Postfix expressions: invoke, item access, field selector/projection
	AttrTarget        = 0
	AttrPostfixOpen   = 1
	AttrPostfixBody   = 2
	AttrPostfixClose  = 3
	AttrPostfixOption = 4

	// RangeExpression
	AttrRangeLeft  = 0
	AttrRangeDots  = 1
	AttrRangeRight = 2

	// Section
	AttrSectionAttributes = 0
	AttrSectionKeyword    = 1
	AttrSectionName       = 2
	AttrSectionSemicolon  = 3
	AttrSectionMembers    = 4

	// SectionMember
	AttrMemberAttributes = 0
	AttrMemberShared     = 1
	AttrMemberPair       = 2
	AttrMemberSemicolon  = 3

	// FieldSpecification
	AttrFieldOptional = 0
	AttrFieldName     = 1
	AttrFieldEquals   = 2
	AttrFieldType     = 3

	// FunctionType: function keyword, parameter list, return AsType
	AttrFunctionTypeKeyword    = 0
	AttrFunctionTypeParameters = 1
	AttrFunctionTypeReturn     = 2
)
