package cppscan

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	defineRe    = regexp.MustCompile(`^#\s*define\s+([A-Za-z_][A-Za-z0-9_]*)`)
	macroLikeRe = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
	identRe     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// recognizer walks the significant token stream once, maintaining the
// scope stack and classifying declaration headers. It never backtracks
// past a consumed statement.
type recognizer struct {
	toks []Token
	i    int

	stack   scopeStack
	decls   []Declaration
	diags   []Diagnostic
	skipped int

	// pending tracks class declarations whose end line is only known
	// when their scope pops.
	pending []pendingEnd

	// knownMacros holds names seen in #define directives; a call-shaped
	// statement naming one of them (followed by a brace block) is a
	// macro-defined function.
	knownMacros map[string]bool
}

type pendingEnd struct {
	depth   int
	declIdx int
}

// recognize runs the scope tracker and declaration recognizer over a full
// token stream. It returns the declarations, the closed scopes, any
// diagnostics, and the count of skipped (unclassifiable) spans.
func recognize(all []Token) ([]Declaration, []Scope, []Diagnostic, int) {
	r := &recognizer{knownMacros: map[string]bool{}}
	for _, t := range all {
		if t.Kind == TokenPreproc {
			if m := defineRe.FindStringSubmatch(t.Text); m != nil {
				r.knownMacros[m[1]] = true
			}
			continue
		}
		if t.significant() {
			r.toks = append(r.toks, t)
		}
	}
	r.run()
	return r.decls, r.stack.closed, r.diags, r.skipped
}

func (r *recognizer) run() {
	for r.i < len(r.toks) {
		t := r.toks[r.i]
		if t.Text == "}" {
			depth := len(r.stack.open)
			r.stack.pop(t.EndLine)
			if n := len(r.pending); n > 0 && r.pending[n-1].depth == depth {
				d := &r.decls[r.pending[n-1].declIdx]
				d.Span.EndLine = t.EndLine
				if d.Body != nil {
					d.Body.EndLine = t.EndLine
				}
				r.pending = r.pending[:n-1]
			}
			r.i++
			continue
		}
		r.parseStatement()
	}
}

func (r *recognizer) peekText(n int) string {
	if r.i+n >= len(r.toks) {
		return ""
	}
	return r.toks[r.i+n].Text
}

// parseStatement consumes one statement at declaration level.
func (r *recognizer) parseStatement() {
	t := r.toks[r.i]

	// Access specifier labels inside class bodies.
	switch t.Text {
	case "public", "private", "protected":
		if r.peekText(1) == ":" {
			r.i += 2
			return
		}
	}

	header, term := r.collectHeader()
	if len(header) == 0 {
		if term == "{" {
			r.skipBody(ScopeBlock, "")
		}
		return
	}
	if term == "}" {
		// Missing semicolon before a scope close: drop the fragment.
		r.skipUnclassified(header, "")
		return
	}
	r.classify(header, term)
}

// collectHeader gathers tokens up to the statement terminator. For a ";"
// terminator the semicolon is consumed; for "{" and "}" the brace is left
// for the caller. Aggregate-initializer braces (preceded by "=" or ",")
// are folded into the header so they never open scopes.
func (r *recognizer) collectHeader() ([]Token, string) {
	var header []Token
	parenDepth := 0
	for r.i < len(r.toks) {
		t := r.toks[r.i]
		switch t.Text {
		case "(":
			parenDepth++
		case ")":
			if parenDepth > 0 {
				parenDepth--
			}
		case ";":
			if parenDepth == 0 {
				r.i++
				return header, ";"
			}
		case "{":
			if parenDepth == 0 {
				prev := ""
				if len(header) > 0 {
					prev = header[len(header)-1].Text
				}
				if prev == "=" || prev == "," {
					header = r.foldBraces(header)
					continue
				}
				return header, "{"
			}
		case "}":
			if parenDepth == 0 {
				return header, "}"
			}
		}
		header = append(header, t)
		r.i++
	}
	return header, ""
}

// foldBraces appends a balanced brace block (starting at the current "{")
// to the header.
func (r *recognizer) foldBraces(header []Token) []Token {
	depth := 0
	for r.i < len(r.toks) {
		t := r.toks[r.i]
		switch t.Text {
		case "{":
			depth++
		case "}":
			depth--
		}
		header = append(header, t)
		r.i++
		if depth == 0 {
			return header
		}
	}
	return header
}

// skipBody consumes a balanced brace block starting at the current "{",
// recording it as a scope. Inner braces are balanced with a plain depth
// counter. Returns the closing line.
func (r *recognizer) skipBody(kind ScopeKind, name string) int {
	open := r.toks[r.i]
	r.stack.push(kind, name, open.StartLine)
	depth := 0
	closeLine := open.EndLine
	for r.i < len(r.toks) {
		t := r.toks[r.i]
		switch t.Text {
		case "{":
			depth++
		case "}":
			depth--
		}
		closeLine = t.EndLine
		r.i++
		if depth == 0 {
			break
		}
	}
	r.stack.pop(closeLine)
	return closeLine
}

func (r *recognizer) skipUnclassified(header []Token, term string) {
	r.skipped++
	if len(header) > 0 {
		r.diags = append(r.diags, Diagnostic{
			Kind:    DiagUnclassifiedSpan,
			Line:    header[0].StartLine,
			Message: "could not classify declaration-level tokens",
		})
	}
	if term == "{" {
		r.skipBody(ScopeBlock, "")
	}
}

// classify decides what the collected header is and records declarations
// and scope pushes accordingly.
func (r *recognizer) classify(header []Token, term string) {
	rest := header
	templatePrefix, isSpecialization := "", false
	if len(rest) > 1 && rest[0].Text == "template" && rest[1].Text == "<" {
		end := matchAngle(rest, 1)
		if end < 0 {
			r.skipUnclassified(header, term)
			return
		}
		templatePrefix = joinTokenText(rest[:end+1])
		isSpecialization = end == 2 // bare "template<>"
		rest = rest[end+1:]
	}
	if len(rest) == 0 {
		r.skipUnclassified(header, term)
		return
	}

	switch rest[0].Text {
	case "namespace":
		r.classifyNamespace(rest, term)
		return
	case "using", "typedef", "static_assert":
		if term == "{" {
			r.skipBody(ScopeBlock, "")
		}
		return
	case "extern":
		if len(rest) >= 2 && rest[1].Kind == TokenString {
			if len(rest) == 2 && term == "{" {
				r.stack.push(ScopeExtern, "", rest[0].StartLine)
				r.i++ // the brace
				return
			}
			// Linkage-qualified declaration: classify the remainder.
			rest = rest[2:]
			if len(rest) == 0 {
				r.skipUnclassified(header, term)
				return
			}
		}
	case "enum", "union":
		if term == "{" {
			r.skipBody(ScopeBlock, "")
		}
		return
	}

	if name, kw, ok := classHeader(rest); ok {
		r.classifyClass(header, rest, name, kw, templatePrefix, isSpecialization, term)
		return
	}

	r.classifyFunction(header, rest, templatePrefix, isSpecialization, term)
}

// classifyNamespace handles "namespace [name] {" and namespace aliases.
func (r *recognizer) classifyNamespace(rest []Token, term string) {
	if term != "{" {
		return // alias or using-directive fragment, already consumed
	}
	var parts []string
	for _, t := range rest[1:] {
		switch {
		case t.Kind == TokenIdentifier:
			parts = append(parts, t.Text)
		case t.Text == "::":
		default:
			parts = nil
		}
	}
	r.stack.push(ScopeNamespace, strings.Join(parts, "::"), rest[0].StartLine)
	r.i++ // the brace
}

// classHeader reports whether rest is a class/struct definition header:
// optional qualifiers, the keyword, an optional name, then nothing but a
// base clause or "final". Returns the name (may include template args on
// specializations) and which keyword introduced it.
func classHeader(rest []Token) (name, keyword string, ok bool) {
	kw := -1
	for i, t := range rest {
		if t.Text == "(" {
			return "", "", false
		}
		if t.Text == "class" || t.Text == "struct" {
			kw = i
			break
		}
		// Qualifiers that may precede the keyword.
		switch t.Text {
		case "typedef", "friend", "inline", "static", "constexpr":
		default:
			return "", "", false
		}
	}
	if kw < 0 {
		return "", "", false
	}
	keyword = rest[kw].Text
	i := kw + 1
	if i < len(rest) && rest[i].Kind == TokenIdentifier && !isKeyword(rest[i].Text) {
		name = rest[i].Text
		i++
		if i < len(rest) && rest[i].Text == "<" {
			end := matchAngle(rest, i)
			if end < 0 {
				return "", "", false
			}
			name += joinTokenText(rest[i : end+1])
			i = end + 1
		}
	}
	if i < len(rest) && rest[i].Text == "final" {
		i++
	}
	if i == len(rest) || rest[i].Text == ":" {
		return name, keyword, true
	}
	return "", "", false
}

// classifyClass pushes the class scope and, for templates, records the
// declaration.
func (r *recognizer) classifyClass(header, rest []Token, name, keyword, templatePrefix string, isSpecialization bool, term string) {
	if term != "{" {
		return // forward declaration
	}
	kind := ScopeClass
	if keyword == "struct" {
		kind = ScopeStruct
	}
	if templatePrefix != "" {
		declKind := DeclTemplateClass
		if isSpecialization {
			declKind = DeclTemplateSpecialization
		}
		body := Span{StartLine: r.toks[r.i].StartLine}
		r.decls = append(r.decls, Declaration{
			Name:           stripTemplateArgs(name),
			QualifiedName:  joinQualified(r.stack.path(), stripTemplateArgs(name)),
			Kind:           declKind,
			Signature:      joinTokenText(header),
			TemplatePrefix: templatePrefix,
			Body:           &body,
			Span:           Span{StartLine: header[0].StartLine},
			ScopePath:      r.stack.path(),
		})
		r.pending = append(r.pending, pendingEnd{
			depth:   len(r.stack.open) + 1,
			declIdx: len(r.decls) - 1,
		})
	}
	r.stack.push(kind, name, rest[0].StartLine)
	r.i++ // the brace
}

// classifyFunction handles everything with call syntax: functions,
// methods, ctors/dtors, operators, and macro-defined functions.
func (r *recognizer) classifyFunction(header, rest []Token, templatePrefix string, isSpecialization bool, term string) {
	parenIdx := findParamParen(rest)
	if parenIdx <= 0 {
		// No call syntax: a plain variable or field declaration is benign,
		// anything brace-terminated is an unclassifiable block.
		if term == "{" {
			r.skipUnclassified(header, term)
		}
		return
	}

	// An "=" before the paren means a variable with a call-shaped
	// initializer, not a function. Operator names are exempt: the
	// scanner emits "operator==" as single-char "=" tokens.
	if !hasOperatorKeyword(rest[:parenIdx]) {
		for _, t := range rest[:parenIdx] {
			if t.Text == "=" {
				if term == "{" {
					r.skipUnclassified(header, term)
				}
				return
			}
		}
	}

	nameStart, leaf, explicit, paramOpen := functionName(rest, parenIdx)
	if leaf == "" {
		r.skipUnclassified(header, term)
		return
	}

	closeIdx := matchParen(rest, paramOpen)
	if closeIdx < 0 {
		r.skipUnclassified(header, term)
		return
	}
	params := splitParams(rest[paramOpen+1 : closeIdx])

	var qualifiers []string
	for _, t := range rest[:nameStart] {
		switch t.Text {
		case "static", "virtual", "inline", "explicit", "constexpr", "consteval", "friend", "extern":
			qualifiers = append(qualifiers, t.Text)
		}
	}
	for j := closeIdx + 1; j < len(rest); j++ {
		switch rest[j].Text {
		case "const", "noexcept", "override", "final":
			qualifiers = append(qualifiers, rest[j].Text)
		case "=":
			if j+1 < len(rest) {
				switch rest[j+1].Text {
				case "0":
					qualifiers = append(qualifiers, "pure")
				case "default", "delete":
					qualifiers = append(qualifiers, rest[j+1].Text)
				}
			}
		}
	}

	friend := false
	for _, q := range qualifiers {
		if q == "friend" {
			friend = true
		}
	}

	scopePath := r.stack.path()
	if friend {
		scopePath = r.namespacePath()
	}
	enclosing := r.stack.enclosingClass()

	// Macro-defined function: call syntax at statement start with no
	// return type, conventionally-named macro, and an immediate body.
	if nameStart == 0 && len(explicit) == 0 &&
		(macroLikeRe.MatchString(leaf) || r.knownMacros[leaf]) {
		if term == "{" {
			r.recordMacroFunction(header, rest, leaf, params, scopePath)
		}
		// A bodiless macro invocation is an ordinary statement.
		return
	}

	isDtor := strings.HasPrefix(leaf, "~")
	isOperator := strings.HasPrefix(leaf, "operator")
	isCtor := false
	if !isDtor && !isOperator && nameStart == 0 {
		base := stripTemplateArgs(leaf)
		if len(explicit) > 0 {
			isCtor = base == stripTemplateArgs(explicit[len(explicit)-1])
		} else if enclosing != "" {
			isCtor = base == stripTemplateArgs(enclosing)
		}
	}

	var kind DeclKind
	switch {
	case isDtor:
		kind = DeclDtor
	case isCtor:
		kind = DeclCtor
	case isOperator:
		kind = DeclOperator
	case isSpecialization:
		kind = DeclTemplateSpecialization
	case templatePrefix != "":
		kind = DeclTemplateFunction
	case len(explicit) > 0 || (enclosing != "" && !friend):
		if term == "{" {
			kind = DeclMethodDef
		} else {
			kind = DeclMethodDecl
		}
	default:
		kind = DeclFreeFunction
	}

	leafName := leaf
	if !isOperator && !isDtor {
		leafName = stripTemplateArgs(leaf)
	}
	pathParts := append(append([]string{}, scopePath...), explicit...)
	qualified := joinQualified(pathParts, leafName)

	decl := Declaration{
		Name:           leafName,
		QualifiedName:  qualified,
		Kind:           kind,
		Signature:      joinTokenText(header),
		Params:         params,
		Qualifiers:     qualifiers,
		TemplatePrefix: templatePrefix,
		Span:           Span{StartLine: header[0].StartLine, EndLine: header[len(header)-1].EndLine},
		ScopePath:      scopePath,
	}

	if term == "{" {
		bodyStart := r.toks[r.i].StartLine
		closeLine := r.skipBody(ScopeFunctionBody, qualified)
		decl.Body = &Span{StartLine: bodyStart, EndLine: closeLine}
		decl.Span.EndLine = closeLine
	}
	r.decls = append(r.decls, decl)
}

// recordMacroFunction records a macro-invocation-shaped definition. The
// function's identity comes from the macro's arguments by convention: the
// second argument when it is identifier-shaped, else the first
// identifier-shaped argument.
func (r *recognizer) recordMacroFunction(header, rest []Token, macroName string, params []string, scopePath []string) {
	name := macroName
	confident := false
	if len(params) >= 2 && identRe.MatchString(strings.TrimSpace(params[1])) {
		name = strings.TrimSpace(params[1])
		confident = true
	} else {
		for _, p := range params {
			if identRe.MatchString(strings.TrimSpace(p)) {
				name = strings.TrimSpace(p)
				confident = true
				break
			}
		}
	}
	line := header[0].StartLine
	msg := fmt.Sprintf("function %q derived from %s arguments by naming convention", name, macroName)
	if !confident {
		msg = fmt.Sprintf("no identifier-shaped argument in %s; using the macro name itself", macroName)
	}
	r.diags = append(r.diags, Diagnostic{Kind: DiagMacroHeuristic, Line: line, Message: msg})

	qualified := joinQualified(scopePath, name)
	bodyStart := r.toks[r.i].StartLine
	closeLine := r.skipBody(ScopeFunctionBody, qualified)
	r.decls = append(r.decls, Declaration{
		Name:          name,
		QualifiedName: qualified,
		Kind:          DeclMacroFunction,
		Signature:     joinTokenText(header),
		Params:        params,
		Span:          Span{StartLine: line, EndLine: closeLine},
		Body:          &Span{StartLine: bodyStart, EndLine: closeLine},
		ScopePath:     scopePath,
	})
}

// namespacePath is the scope path with class/struct segments removed,
// used for friend declarations which name entities of the enclosing
// namespace.
func (r *recognizer) namespacePath() []string {
	var parts []string
	for _, sc := range r.stack.open {
		if sc.Kind == ScopeNamespace {
			if strings.Contains(sc.Name, "::") {
				parts = append(parts, strings.Split(sc.Name, "::")...)
			} else {
				parts = append(parts, sc.Name)
			}
		}
	}
	return parts
}

// findParamParen locates the parameter-list "(": the first "(" outside
// template angle brackets. A "<" spelling an operator name is an
// operator symbol, not an angle bracket.
func findParamParen(rest []Token) int {
	angle := 0
	for i, t := range rest {
		switch t.Text {
		case "<":
			if !operatorSymbolAt(rest, i) {
				angle++
			}
		case ">":
			if angle > 0 {
				angle--
			}
		case "(":
			if angle == 0 {
				return i
			}
		}
	}
	return -1
}

// operatorSymbolAt reports whether the "<" at index i belongs to an
// operator name: "operator<", or the second "<" of "operator<<" and
// "operator<<=".
func operatorSymbolAt(rest []Token, i int) bool {
	if i > 0 && rest[i-1].Text == "operator" {
		return true
	}
	return i > 1 && rest[i-1].Text == "<" && rest[i-2].Text == "operator"
}

func hasOperatorKeyword(toks []Token) bool {
	for _, t := range toks {
		if t.Text == "operator" {
			return true
		}
	}
	return false
}

// functionName walks backwards from the parameter paren to assemble the
// (possibly qualified) function name. It returns the index where the name
// begins, the leaf name, the explicit qualifier segments (outermost
// first), and the index of the parameter-list "(" (which differs from
// parenIdx only for "operator()").
func functionName(rest []Token, parenIdx int) (nameStart int, leaf string, explicit []string, paramOpen int) {
	paramOpen = parenIdx

	// Operator name: scan a short window before the paren for the
	// "operator" keyword.
	for back := 1; back <= 4 && parenIdx-back >= 0; back++ {
		p := parenIdx - back
		if rest[p].Text != "operator" {
			continue
		}
		if back == 1 {
			// "operator()" — the following paren group is the call
			// operator's name, the parameter list comes after it.
			if parenIdx+1 < len(rest) && rest[parenIdx+1].Text == ")" {
				if parenIdx+2 >= len(rest) || rest[parenIdx+2].Text != "(" {
					return 0, "", nil, parenIdx
				}
				leaf = "operator()"
				paramOpen = parenIdx + 2
			} else {
				return 0, "", nil, parenIdx
			}
		} else {
			leaf = "operator" + operatorSymbol(rest[p+1:parenIdx])
		}
		nameStart, explicit = qualifierChain(rest, p)
		return nameStart, leaf, explicit, paramOpen
	}

	j := parenIdx - 1
	var seg string
	var segStart int
	switch {
	case rest[j].Text == ">":
		seg, segStart = segmentBackward(rest, j)
	case rest[j].Kind == TokenIdentifier && !isKeyword(rest[j].Text):
		seg, segStart = rest[j].Text, j
	default:
		return 0, "", nil, parenIdx
	}
	if seg == "" {
		return 0, "", nil, parenIdx
	}
	leaf = seg
	nameStart, explicit = qualifierChain(rest, segStart)
	if nameStart > 0 && rest[nameStart-1].Text == "~" {
		leaf = "~" + leaf
		nameStart--
	}
	// A destructor leaf inside a qualified chain ("~" before the last
	// segment) is already covered: "~" binds to the leaf only.
	_ = segStart
	return nameStart, leaf, explicit, paramOpen
}

// qualifierChain walks "A::B::" chains backwards from the token index
// where the leaf segment starts. Returns the index where the whole name
// begins and the qualifier segments, outermost first.
func qualifierChain(rest []Token, leafStart int) (nameStart int, explicit []string) {
	k := leafStart
	for k-1 >= 0 && rest[k-1].Text == "::" {
		if k-2 < 0 {
			break
		}
		var seg string
		var segStart int
		switch {
		case rest[k-2].Text == ">":
			seg, segStart = segmentBackward(rest, k-2)
		case rest[k-2].Kind == TokenIdentifier && !isKeyword(rest[k-2].Text):
			seg, segStart = rest[k-2].Text, k-2
		default:
			seg = ""
		}
		if seg == "" {
			break
		}
		explicit = append([]string{stripTemplateArgs(seg)}, explicit...)
		k = segStart
	}
	return k, explicit
}

// segmentBackward resolves a name segment that ends with a ">" (template
// arguments) by walking back to the matching "<" and the identifier
// before it. Returns the full segment text and its start index.
func segmentBackward(rest []Token, closeIdx int) (string, int) {
	depth := 0
	i := closeIdx
	for ; i >= 0; i-- {
		switch rest[i].Text {
		case ">":
			depth++
		case "<":
			depth--
		}
		if depth == 0 {
			break
		}
	}
	if i <= 0 || rest[i-1].Kind != TokenIdentifier || isKeyword(rest[i-1].Text) {
		return "", -1
	}
	return joinTokenText(rest[i-1 : closeIdx+1]), i - 1
}

// operatorSymbol joins the tokens naming an operator ("+", "==", "[]",
// "bool", "<<"). Identifier-shaped tokens (conversion operators) get a
// separating space.
func operatorSymbol(toks []Token) string {
	var b strings.Builder
	for _, t := range toks {
		if t.Kind == TokenIdentifier && b.Len() == 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t.Text)
	}
	return b.String()
}

// matchParen returns the index of the ")" matching the "(" at open.
func matchParen(toks []Token, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i].Text {
		case "(":
			depth++
		case ")":
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// matchAngle returns the index of the ">" matching the "<" at open.
func matchAngle(toks []Token, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i].Text {
		case "<":
			depth++
		case ">":
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitParams splits the tokens between the parameter parens on top-level
// commas and renders each parameter's raw text.
func splitParams(toks []Token) []string {
	var params []string
	depth := 0
	start := 0
	for i, t := range toks {
		switch t.Text {
		case "(", "[", "{", "<":
			depth++
		case ")", "]", "}", ">":
			if depth > 0 {
				depth--
			}
		case ",":
			if depth == 0 {
				params = append(params, joinTokenText(toks[start:i]))
				start = i + 1
			}
		}
	}
	if start < len(toks) {
		params = append(params, joinTokenText(toks[start:]))
	}
	return params
}

var (
	noSpaceBefore = map[string]bool{
		")": true, "]": true, ",": true, ";": true, "::": true,
		"(": true, ">": true, "<": true, "&": true, "*": true,
	}
	noSpaceAfter = map[string]bool{
		"(": true, "[": true, "::": true, "~": true, "<": true,
	}
)

// joinTokenText renders tokens back to compact, readable source text.
func joinTokenText(toks []Token) string {
	var b strings.Builder
	prev := ""
	for i, t := range toks {
		if i > 0 && !noSpaceBefore[t.Text] && !noSpaceAfter[prev] {
			b.WriteByte(' ')
		}
		b.WriteString(t.Text)
		prev = t.Text
	}
	return b.String()
}
