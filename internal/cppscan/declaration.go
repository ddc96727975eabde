package cppscan

import "strings"

// DeclKind classifies a recognized declaration.
type DeclKind int

const (
	DeclFreeFunction DeclKind = iota
	DeclMethodDecl
	DeclMethodDef
	DeclCtor
	DeclDtor
	DeclOperator
	DeclTemplateFunction
	DeclTemplateClass
	DeclTemplateSpecialization
	DeclMacroFunction
)

func (k DeclKind) String() string {
	switch k {
	case DeclFreeFunction:
		return "free-function"
	case DeclMethodDecl:
		return "method-decl"
	case DeclMethodDef:
		return "method-def"
	case DeclCtor:
		return "ctor"
	case DeclDtor:
		return "dtor"
	case DeclOperator:
		return "operator"
	case DeclTemplateFunction:
		return "template-function"
	case DeclTemplateClass:
		return "template-class"
	case DeclTemplateSpecialization:
		return "template-specialization"
	case DeclMacroFunction:
		return "macro-defined-function"
	default:
		return "unknown"
	}
}

// Span is a 1-based inclusive line range.
type Span struct {
	StartLine int
	EndLine   int
}

// Contains reports whether other lies fully within s.
func (s Span) Contains(other Span) bool {
	return s.StartLine <= other.StartLine && other.EndLine <= s.EndLine
}

// ContainsLine reports whether line lies within s.
func (s Span) ContainsLine(line int) bool {
	return s.StartLine <= line && line <= s.EndLine
}

// Declaration is one recognized function, method, operator, template, or
// macro-defined function. Parameter types are raw token text, not
// resolved types.
type Declaration struct {
	// Name is the unqualified leaf name ("method", "operator+", "~Foo").
	Name string

	// QualifiedName joins the enclosing scope path with any explicit
	// qualifiers and the leaf name ("MyNamespace::NamespacedClass::getValue").
	// Template argument lists are stripped from path segments so that a
	// specialization shares its generic template's qualified name.
	QualifiedName string

	Kind DeclKind

	// Signature is the raw header text up to (but excluding) the body
	// brace or terminating semicolon, whitespace-collapsed.
	Signature string

	// Params holds the raw text of each parameter, in order.
	Params []string

	// Qualifiers holds recognized qualifiers in source order
	// (const, static, virtual, override, noexcept, explicit, friend, pure).
	Qualifiers []string

	// TemplatePrefix is the raw "template<...>" text, empty for
	// non-template declarations.
	TemplatePrefix string

	// Body is the brace-block span, nil for header-style declarations.
	Body *Span

	// Span covers the whole declaration including the header.
	Span Span

	// ScopePath is the qualified path of the enclosing scope at the
	// point of declaration (empty segments for anonymous namespaces).
	ScopePath []string

	// SignatureKey is assigned by the overload disambiguator; empty for
	// declarations whose qualified name is unique in the file.
	SignatureKey SignatureKey
}

// HasQualifier reports whether q was recorded on the declaration.
func (d *Declaration) HasQualifier(q string) bool {
	for _, have := range d.Qualifiers {
		if have == q {
			return true
		}
	}
	return false
}

// IsDefinition reports whether the declaration has a body.
func (d *Declaration) IsDefinition() bool { return d.Body != nil }

// stripTemplateArgs removes a trailing <...> from a name segment, so
// "Container<T>" and "templateAdd<int>" group with their generic forms.
func stripTemplateArgs(name string) string {
	if i := strings.IndexByte(name, '<'); i > 0 {
		return name[:i]
	}
	return name
}

// joinQualified builds a qualified name from a scope path plus leaf,
// skipping anonymous (empty) segments.
func joinQualified(path []string, leaf string) string {
	parts := make([]string, 0, len(path)+1)
	for _, p := range path {
		if p != "" {
			parts = append(parts, stripTemplateArgs(p))
		}
	}
	parts = append(parts, leaf)
	return strings.Join(parts, "::")
}
