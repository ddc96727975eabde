package cppscan

// TokenKind identifies the lexical class of a token.
type TokenKind int

const (
	TokenWhitespace TokenKind = iota
	TokenIdentifier
	TokenNumber
	TokenPunct
	TokenString
	TokenChar
	TokenLineComment
	TokenBlockComment
	// TokenMarkerComment is a line comment of the form
	// "//@@start <id>" or "//@@end <id>" occupying a full line
	// (only leading whitespace before the comment).
	TokenMarkerComment
	// TokenPreproc is a whole preprocessor directive, including
	// backslash-continued lines. Braces inside a #define body are part
	// of this single token and never reach the scope tracker.
	TokenPreproc
)

func (k TokenKind) String() string {
	switch k {
	case TokenWhitespace:
		return "whitespace"
	case TokenIdentifier:
		return "identifier"
	case TokenNumber:
		return "number"
	case TokenPunct:
		return "punct"
	case TokenString:
		return "string"
	case TokenChar:
		return "char"
	case TokenLineComment:
		return "line-comment"
	case TokenBlockComment:
		return "block-comment"
	case TokenMarkerComment:
		return "marker-comment"
	case TokenPreproc:
		return "preproc"
	default:
		return "unknown"
	}
}

// Token is one lexical unit of a source file. Tokens are immutable once
// produced and cover the input exactly once, with no gaps or overlaps.
// Lines and columns are 1-based.
type Token struct {
	Kind      TokenKind
	Text      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// significant reports whether the token participates in structural
// recognition (everything except whitespace and comments).
func (t Token) significant() bool {
	switch t.Kind {
	case TokenWhitespace, TokenLineComment, TokenBlockComment, TokenMarkerComment:
		return false
	}
	return true
}

// cppKeywords are the keywords the recognizer cares about. The scanner
// emits keywords as TokenIdentifier; isKeyword distinguishes them.
var cppKeywords = map[string]bool{
	"alignas": true, "alignof": true, "auto": true, "bool": true,
	"break": true, "case": true, "catch": true, "char": true,
	"class": true, "const": true, "consteval": true, "constexpr": true,
	"continue": true, "decltype": true, "default": true, "delete": true,
	"do": true, "double": true, "else": true, "enum": true,
	"explicit": true, "extern": true, "final": true, "float": true,
	"for": true, "friend": true, "goto": true, "if": true,
	"inline": true, "int": true, "long": true, "mutable": true,
	"namespace": true, "new": true, "noexcept": true, "operator": true,
	"override": true, "private": true, "protected": true, "public": true,
	"register": true, "return": true, "short": true, "signed": true,
	"sizeof": true, "static": true, "struct": true, "switch": true,
	"template": true, "this": true, "throw": true, "try": true,
	"typedef": true, "typename": true, "union": true, "unsigned": true,
	"using": true, "virtual": true, "void": true, "volatile": true,
	"while": true,
}

func isKeyword(s string) bool { return cppKeywords[s] }
