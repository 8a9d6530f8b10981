// Package token defines the lexical tokens of the yov language and the
// source positions attached to them.
package token

import "fmt"

// Kind identifies the lexical class of a Token.
type Kind int

const (
	Illegal Kind = iota
	EOF

	Ident
	Int
	String
	Codepoint

	// Punctuation
	LParen   // (
	RParen   // )
	LBrace   // {
	RBrace   // }
	LBracket // [
	RBracket // ]
	Comma
	Semi
	Colon      // :
	ColonColon // ::
	Dot
	Amp // &

	// Assignment
	Assign // =
	AddAssign
	SubAssign
	MulAssign
	DivAssign
	ModAssign

	// Operators
	Add // +
	Sub
	Mul
	Div
	Mod
	Inc // ++
	Dec // --

	Eq // ==
	Ne
	Lt
	Le
	Gt
	Ge
	LAnd // &&
	LOr  // ||
	Not  // !

	// Keywords
	KwIf
	KwElse
	KwWhile
	KwFor
	KwEnum
	KwStruct
	KwFunc
	KwReturn
	KwContinue
	KwBreak
	KwImport
	KwIs
	KwArg
	KwNull
	KwTrue
	KwFalse
)

var keywords = map[string]Kind{
	"if":       KwIf,
	"else":     KwElse,
	"while":    KwWhile,
	"for":      KwFor,
	"enum":     KwEnum,
	"struct":   KwStruct,
	"func":     KwFunc,
	"return":   KwReturn,
	"continue": KwContinue,
	"break":    KwBreak,
	"import":   KwImport,
	"is":       KwIs,
	"arg":      KwArg,
	"null":     KwNull,
	"true":     KwTrue,
	"false":    KwFalse,
}

// Lookup returns the keyword Kind for ident, or Ident if it is not a keyword.
func Lookup(ident string) Kind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return Ident
}

var names = map[Kind]string{
	Illegal: "illegal", EOF: "eof", Ident: "ident", Int: "int", String: "string",
	Codepoint: "codepoint", LParen: "(", RParen: ")", LBrace: "{", RBrace: "}",
	LBracket: "[", RBracket: "]", Comma: ",", Semi: ";", Colon: ":", ColonColon: "::",
	Dot: ".", Amp: "&", Assign: "=", AddAssign: "+=", SubAssign: "-=", MulAssign: "*=",
	DivAssign: "/=", ModAssign: "%=", Add: "+", Sub: "-", Mul: "*", Div: "/", Mod: "%",
	Inc: "++", Dec: "--", Eq: "==", Ne: "!=", Lt: "<", Le: "<=", Gt: ">", Ge: ">=",
	LAnd: "&&", LOr: "||", Not: "!", KwIf: "if", KwElse: "else", KwWhile: "while",
	KwFor: "for", KwEnum: "enum", KwStruct: "struct", KwFunc: "func", KwReturn: "return",
	KwContinue: "continue", KwBreak: "break", KwImport: "import", KwIs: "is",
	KwArg: "arg", KwNull: "null", KwTrue: "true", KwFalse: "false",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// CompoundOp returns the underlying binary operator of a compound-assignment
// token (e.g. AddAssign -> Add), or Illegal if tok is not compound-assignment.
func (k Kind) CompoundOp() Kind {
	switch k {
	case AddAssign:
		return Add
	case SubAssign:
		return Sub
	case MulAssign:
		return Mul
	case DivAssign:
		return Div
	case ModAssign:
		return Mod
	default:
		return Illegal
	}
}

// Pos is a byte offset into a single script's source text.
type Pos int

// Token is a single lexical token with its source location.
type Token struct {
	Kind    Kind
	Literal string // raw text for Ident/Int/String/Codepoint; sigil text otherwise
	Pos     Pos    // byte offset of the first byte of the token
	End     Pos    // byte offset just past the last byte of the token
}

func (t Token) String() string {
	if t.Literal != "" {
		return fmt.Sprintf("%s(%q)@%d", t.Kind, t.Literal, t.Pos)
	}
	return fmt.Sprintf("%s@%d", t.Kind, t.Pos)
}
