package cppscan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// kindsOf filters out whitespace and returns the remaining token kinds.
func kindsOf(toks []Token) []TokenKind {
	var out []TokenKind
	for _, t := range toks {
		if t.Kind != TokenWhitespace {
			out = append(out, t.Kind)
		}
	}
	return out
}

func textsOf(toks []Token) []string {
	var out []string
	for _, t := range toks {
		if t.Kind != TokenWhitespace {
			out = append(out, t.Text)
		}
	}
	return out
}

func TestScanTokens_Basic(t *testing.T) {
	t.Parallel()

	toks, diags := scanTokens("int x = 42;\n")
	require.Empty(t, diags)

	assert.Equal(t, []TokenKind{
		TokenIdentifier, TokenIdentifier, TokenPunct, TokenNumber, TokenPunct,
	}, kindsOf(toks))
	assert.Equal(t, []string{"int", "x", "=", "42", ";"}, textsOf(toks))
}

func TestScanTokens_CoversInputExactly(t *testing.T) {
	t.Parallel()

	src := "int main() {\n  // hi\n  return 0; /* done */\n}\n"
	toks, _ := scanTokens(src)

	var rebuilt string
	for _, tok := range toks {
		rebuilt += tok.Text
	}
	assert.Equal(t, src, rebuilt)
}

func TestScanTokens_TwoBytePunctuators(t *testing.T) {
	t.Parallel()

	toks, _ := scanTokens("a::b->c")
	assert.Equal(t, []string{"a", "::", "b", "->", "c"}, textsOf(toks))
}

func TestScanTokens_MarkerComments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want TokenKind
	}{
		{
			name: "full line marker",
			src:  "//@@start setup\n",
			want: TokenMarkerComment,
		},
		{
			name: "indented marker",
			src:  "    //@@end my-region_2\n",
			want: TokenMarkerComment,
		},
		{
			name: "trailing comment is not a marker",
			src:  "int x; //@@start setup\n",
			want: TokenLineComment,
		},
		{
			name: "extra words disqualify",
			src:  "//@@start setup now\n",
			want: TokenLineComment,
		},
		{
			name: "bad identifier characters",
			src:  "//@@start a.b\n",
			want: TokenLineComment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			toks, diags := scanTokens(tt.src)
			require.Empty(t, diags)

			found := TokenWhitespace
			for _, tok := range toks {
				if tok.Kind == TokenLineComment || tok.Kind == TokenMarkerComment {
					found = tok.Kind
				}
			}
			assert.Equal(t, tt.want, found)
		})
	}
}

func TestScanTokens_UnterminatedBlockComment(t *testing.T) {
	t.Parallel()

	toks, diags := scanTokens("/* never closed\nint x;\n")

	require.Len(t, diags, 1)
	assert.Equal(t, DiagUnterminatedComment, diags[0].Kind)
	assert.Equal(t, 1, diags[0].Line)

	// Scanning resumes on the following line.
	assert.Contains(t, textsOf(toks), "int")
}

func TestScanTokens_UnterminatedStringLiteral(t *testing.T) {
	t.Parallel()

	toks, diags := scanTokens("const char* s = \"oops\nint y;\n")

	require.Len(t, diags, 1)
	assert.Equal(t, DiagUnterminatedLiteral, diags[0].Kind)
	assert.Equal(t, 1, diags[0].Line)
	assert.Contains(t, textsOf(toks), "y")
}

func TestScanTokens_StringEscapes(t *testing.T) {
	t.Parallel()

	toks, diags := scanTokens(`const char* s = "a \" b";`)
	require.Empty(t, diags)

	var str string
	for _, tok := range toks {
		if tok.Kind == TokenString {
			str = tok.Text
		}
	}
	assert.Equal(t, `"a \" b"`, str)
}

func TestScanTokens_RawString(t *testing.T) {
	t.Parallel()

	toks, diags := scanTokens(`auto s = R"(quote " and { brace)";`)
	require.Empty(t, diags)

	var str string
	for _, tok := range toks {
		if tok.Kind == TokenString {
			str = tok.Text
		}
	}
	assert.Equal(t, `R"(quote " and { brace)"`, str)
	// The brace inside the literal never becomes a punctuator.
	assert.NotContains(t, textsOf(toks), "{")
}

func TestScanTokens_PreprocSwallowsBraces(t *testing.T) {
	t.Parallel()

	src := "#define WRAP(x) { \\\n  (x); }\nint z;\n"
	toks, diags := scanTokens(src)
	require.Empty(t, diags)

	var preproc []Token
	for _, tok := range toks {
		if tok.Kind == TokenPreproc {
			preproc = append(preproc, tok)
		}
	}
	require.Len(t, preproc, 1)
	assert.Equal(t, 1, preproc[0].StartLine)
	assert.Equal(t, 2, preproc[0].EndLine)

	// The define's braces are part of the directive token.
	assert.NotContains(t, textsOf(toks), "{")
	assert.NotContains(t, textsOf(toks), "}")
	assert.Contains(t, textsOf(toks), "z")
}

func TestScanTokens_CharLiteral(t *testing.T) {
	t.Parallel()

	toks, diags := scanTokens(`char c = '\n';`)
	require.Empty(t, diags)

	kinds := kindsOf(toks)
	assert.Contains(t, kinds, TokenChar)
}

func TestScanTokens_LineNumbers(t *testing.T) {
	t.Parallel()

	toks, _ := scanTokens("int a;\nint b;\n")

	var bLine int
	for _, tok := range toks {
		if tok.Text == "b" {
			bLine = tok.StartLine
		}
	}
	assert.Equal(t, 2, bLine)
}
