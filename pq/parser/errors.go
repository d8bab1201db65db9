package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrCancelled is returned, wrapping the context error, when an operation
// observes a cancelled context.
var ErrCancelled = errors.New("operation cancelled")

func checkCancelled(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return nil
}

type LexErrorKind int

const (
	LexErrUnexpectedCharacter LexErrorKind = iota
	LexErrExpectedHexDigits
	LexErrExpectedNumericLiteral
	LexErrUnknownHashKeyword
	LexErrBadLineNumber
	LexErrBadRange
	LexErrErrorLines
	LexErrUnterminatedMultilineToken
)

var lexErrorKindNames = map[LexErrorKind]string{
	LexErrUnexpectedCharacter:        "UnexpectedCharacter",
	LexErrExpectedHexDigits:          "ExpectedHexDigits",
	LexErrExpectedNumericLiteral:     "ExpectedNumericLiteral",
	LexErrUnknownHashKeyword:         "UnknownHashKeyword",
	LexErrBadLineNumber:              "BadLineNumber",
	LexErrBadRange:                   "BadRange",
	LexErrErrorLines:                 "ErrorLines",
	LexErrUnterminatedMultilineToken: "UnterminatedMultilineToken",
}

func (k LexErrorKind) String() string {
	if name, ok := lexErrorKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// LexError is a tokenization failure. Per-line errors are stored on the
// offending line; the other kinds are returned by State operations.
type LexError struct {
	Kind     LexErrorKind
	Position Position
	Message  string

	// Mode names the unterminated token for UnterminatedMultilineToken.
	Mode LineMode
	// Lines holds the per-line errors for ErrorLines.
	Lines map[int]*LexError
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %s: %s", e.Position, e.Message)
}

type ParseErrorKind int

const (
	ParseErrExpectedTokenKind ParseErrorKind = iota
	ParseErrExpectedAnyTokenKind
	ParseErrUnexpectedToken
	ParseErrUnterminatedBracket
	ParseErrUnusedTokensRemain
	ParseErrInvalidPrimitiveType
	ParseErrNestingTooDeep
)

var parseErrorKindNames = map[ParseErrorKind]string{
	ParseErrExpectedTokenKind:    "ExpectedTokenKind",
	ParseErrExpectedAnyTokenKind: "ExpectedAnyTokenKind",
	ParseErrUnexpectedToken:      "UnexpectedToken",
	ParseErrUnterminatedBracket:  "UnterminatedBracket",
	ParseErrUnusedTokensRemain:   "UnusedTokensRemain",
	ParseErrInvalidPrimitiveType: "InvalidPrimitiveType",
	ParseErrNestingTooDeep:       "NestingTooDeep",
}

func (k ParseErrorKind) String() string {
	if name, ok := parseErrorKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// ParseError reports where parsing stopped. Nodes and Leaves are the
// collection as it stood at the failure, so the partial tree stays
// inspectable.
type ParseError struct {
	Kind     ParseErrorKind
	Message  string
	Expected []TokenKind
	// Found is the token that could not be consumed, nil at end of input.
	Found    *Token
	Position Position

	Nodes  *Collection
	Leaves []NodeID
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s: %s", e.Position, e.Message)
}

// InvariantError signals an internal inconsistency. It is never caused by
// bad input.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return "invariant violation: " + e.Message
}

func invariantf(format string, args ...any) *InvariantError {
	return &InvariantError{Message: fmt.Sprintf(format, args...)}
}

type messageID int

const (
	msgUnexpectedCharacter messageID = iota
	msgExpectedHexDigits
	msgExpectedExponentDigits
	msgUnknownHashKeyword
	msgBadLineNumber
	msgBadRange
	msgErrorLines
	msgUnterminated
	msgExpectedToken
	msgExpectedAnyToken
	msgUnexpectedToken
	msgUnterminatedBracket
	msgUnusedTokens
	msgInvalidPrimitiveType
	msgNestingTooDeep
)

var messages = map[string]map[messageID]string{
	"en-US": {
		msgUnexpectedCharacter:    "unexpected character %q",
		msgExpectedHexDigits:      "expected hexadecimal digits after 0x",
		msgExpectedExponentDigits: "expected digits in exponent",
		msgUnknownHashKeyword:     "unknown keyword %q",
		msgBadLineNumber:          "line number %d out of range [0, %d)",
		msgBadRange:               "invalid range %s",
		msgErrorLines:             "%d line(s) contain lex errors",
		msgUnterminated:           "unterminated %s",
		msgExpectedToken:          "expected %s, found %s",
		msgExpectedAnyToken:       "expected one of %s, found %s",
		msgUnexpectedToken:        "unexpected %s",
		msgUnterminatedBracket:    "unterminated %s",
		msgUnusedTokens:           "unused tokens remain starting at %s",
		msgInvalidPrimitiveType:   "expected a primitive type, found %s",
		msgNestingTooDeep:         "expression nesting exceeds %d",
	},
}

// DefaultLocale is used for messages when no locale is set or the locale
// has no message table.
const DefaultLocale = "en-US"

func message(locale string, id messageID, args ...any) string {
	table, ok := messages[locale]
	if !ok {
		table = messages[DefaultLocale]
	}
	format, ok := table[id]
	if !ok {
		format = messages[DefaultLocale][id]
	}
	return fmt.Sprintf(format, args...)
}

func describeToken(tok *Token) string {
	if tok == nil {
		return "end of input"
	}
	return fmt.Sprintf("%q", tok.Data)
}

func describeKinds(kinds []TokenKind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = fmt.Sprintf("%q", k.String())
	}
	return strings.Join(names, ", ")
}
