package cppscan

import (
	"fmt"
	"regexp"
	"strings"
)

// markerCommentRe matches a marker comment. The whole comment must match;
// the full-line requirement (only leading whitespace before the "//") is
// checked by the scanner.
var markerCommentRe = regexp.MustCompile(`^//@@(start|end)[ \t]+([A-Za-z0-9_-]+)[ \t]*$`)

// stringPrefixes are the literal prefixes that may precede a quote.
var stringPrefixes = map[string]bool{
	"u8": true, "u": true, "U": true, "L": true,
	"R": true, "u8R": true, "uR": true, "UR": true, "LR": true,
}

type scanner struct {
	src string
	pos int

	line, col         int // position of the next unread byte, 1-based
	lastLine, lastCol int // position of the most recently consumed byte

	// lineStartWS is true while only whitespace has been seen on the
	// current line. Marker comments must be full-line comments.
	lineStartWS bool

	toks  []Token
	diags []Diagnostic
}

// scanTokens tokenizes src. It always returns a token stream covering the
// whole input; lexical problems are reported as diagnostics, not errors.
func scanTokens(src string) ([]Token, []Diagnostic) {
	s := &scanner{src: src, line: 1, col: 1, lineStartWS: true}
	s.run()
	return s.toks, s.diags
}

func (s *scanner) eof() bool  { return s.pos >= len(s.src) }
func (s *scanner) peek() byte { return s.src[s.pos] }
func (s *scanner) peekAt(n int) byte {
	if s.pos+n >= len(s.src) {
		return 0
	}
	return s.src[s.pos+n]
}

func (s *scanner) advance() byte {
	c := s.src[s.pos]
	s.pos++
	s.lastLine, s.lastCol = s.line, s.col
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return c
}

func (s *scanner) run() {
	for !s.eof() {
		start := s.pos
		startLine, startCol := s.line, s.col
		wasLineStart := s.lineStartWS

		c := s.peek()
		var kind TokenKind
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			s.scanWhitespace()
			kind = TokenWhitespace
		case c == '/' && s.peekAt(1) == '/':
			kind = s.scanLineComment(wasLineStart)
		case c == '/' && s.peekAt(1) == '*':
			kind = s.scanBlockComment(startLine)
		case c == '#' && wasLineStart:
			s.scanPreproc()
			kind = TokenPreproc
		case c == '"':
			s.scanQuoted('"', startLine)
			kind = TokenString
		case c == '\'':
			s.scanQuoted('\'', startLine)
			kind = TokenChar
		case isIdentStart(c):
			kind = s.scanIdentifierOrLiteral(startLine)
		case c >= '0' && c <= '9':
			s.scanNumber()
			kind = TokenNumber
		default:
			s.advance()
			// Two-byte punctuators the recognizer treats as units.
			if (c == ':' && !s.eof() && s.peek() == ':') ||
				(c == '-' && !s.eof() && s.peek() == '>') {
				s.advance()
			}
			kind = TokenPunct
		}

		if kind != TokenWhitespace {
			s.lineStartWS = false
		} else if strings.Contains(s.src[start:s.pos], "\n") {
			s.lineStartWS = true
		}

		s.toks = append(s.toks, Token{
			Kind:      kind,
			Text:      s.src[start:s.pos],
			StartLine: startLine,
			StartCol:  startCol,
			EndLine:   s.lastLine,
			EndCol:    s.lastCol,
		})
	}
}

func (s *scanner) scanWhitespace() {
	for !s.eof() {
		c := s.peek()
		if c != ' ' && c != '\t' && c != '\r' && c != '\n' {
			return
		}
		s.advance()
	}
}

// scanLineComment consumes through end of line (exclusive of the newline)
// and classifies marker comments.
func (s *scanner) scanLineComment(fullLine bool) TokenKind {
	start := s.pos
	for !s.eof() && s.peek() != '\n' {
		s.advance()
	}
	text := s.src[start:s.pos]
	if fullLine && markerCommentRe.MatchString(text) {
		return TokenMarkerComment
	}
	return TokenLineComment
}

// scanBlockComment consumes through the closing "*/". An unterminated
// comment is reported as a diagnostic and the token ends at the end of its
// opening line so scanning resumes on the next line.
func (s *scanner) scanBlockComment(startLine int) TokenKind {
	if end := strings.Index(s.src[s.pos:], "*/"); end >= 0 {
		target := s.pos + end + 2
		for s.pos < target {
			s.advance()
		}
		return TokenBlockComment
	}
	s.diags = append(s.diags, Diagnostic{
		Kind:    DiagUnterminatedComment,
		Line:    startLine,
		Message: "block comment is never closed",
	})
	for !s.eof() && s.peek() != '\n' {
		s.advance()
	}
	return TokenBlockComment
}

// scanPreproc consumes a whole preprocessor directive, honoring backslash
// line continuations.
func (s *scanner) scanPreproc() {
	for !s.eof() {
		c := s.advance()
		if c == '\\' && !s.eof() && (s.peek() == '\n' || s.peek() == '\r') {
			for !s.eof() && s.peek() != '\n' {
				s.advance()
			}
			if !s.eof() {
				s.advance() // the newline itself
			}
			continue
		}
		if !s.eof() && s.peek() == '\n' {
			return
		}
	}
}

// scanQuoted consumes a string or character literal with escape handling.
// A literal with no closing quote on its line fails safe: it ends at end
// of line and a diagnostic is recorded.
func (s *scanner) scanQuoted(quote byte, startLine int) {
	s.advance() // opening quote
	for !s.eof() {
		c := s.peek()
		if c == '\n' {
			s.diags = append(s.diags, Diagnostic{
				Kind:    DiagUnterminatedLiteral,
				Line:    startLine,
				Message: fmt.Sprintf("literal opened with %q has no closing quote on its line", string(quote)),
			})
			return
		}
		s.advance()
		if c == '\\' && !s.eof() && s.peek() != '\n' {
			s.advance()
			continue
		}
		if c == quote {
			return
		}
	}
	s.diags = append(s.diags, Diagnostic{
		Kind:    DiagUnterminatedLiteral,
		Line:    startLine,
		Message: fmt.Sprintf("literal opened with %q reaches end of file", string(quote)),
	})
}

// scanRawString consumes a C++ raw string literal: R"delim( ... )delim".
func (s *scanner) scanRawString(startLine int) {
	s.advance() // the quote
	delimStart := s.pos
	for !s.eof() && s.peek() != '(' {
		s.advance()
	}
	if s.eof() {
		s.diags = append(s.diags, Diagnostic{
			Kind:    DiagUnterminatedLiteral,
			Line:    startLine,
			Message: "raw string literal has no opening parenthesis",
		})
		return
	}
	delim := s.src[delimStart:s.pos]
	s.advance() // '('
	closer := ")" + delim + `"`
	if end := strings.Index(s.src[s.pos:], closer); end >= 0 {
		target := s.pos + end + len(closer)
		for s.pos < target {
			s.advance()
		}
		return
	}
	s.diags = append(s.diags, Diagnostic{
		Kind:    DiagUnterminatedLiteral,
		Line:    startLine,
		Message: "raw string literal is never closed",
	})
	for !s.eof() && s.peek() != '\n' {
		s.advance()
	}
}

// scanIdentifierOrLiteral consumes an identifier; if the identifier is a
// recognized literal prefix immediately followed by a quote, the whole
// prefixed literal is consumed as one token.
func (s *scanner) scanIdentifierOrLiteral(startLine int) TokenKind {
	start := s.pos
	for !s.eof() && isIdentPart(s.peek()) {
		s.advance()
	}
	name := s.src[start:s.pos]
	if !s.eof() && stringPrefixes[name] {
		switch s.peek() {
		case '"':
			if strings.HasSuffix(name, "R") {
				s.scanRawString(startLine)
			} else {
				s.scanQuoted('"', startLine)
			}
			return TokenString
		case '\'':
			s.scanQuoted('\'', startLine)
			return TokenChar
		}
	}
	return TokenIdentifier
}

func (s *scanner) scanNumber() {
	prev := byte(0)
	for !s.eof() {
		c := s.peek()
		ok := (c >= '0' && c <= '9') ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			c == '.' || c == '\'' || c == '_'
		if !ok && (c == '+' || c == '-') {
			ok = prev == 'e' || prev == 'E' || prev == 'p' || prev == 'P'
		}
		if !ok {
			return
		}
		prev = c
		s.advance()
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
