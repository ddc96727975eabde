package cppscan

import "strings"

// ScopeKind identifies what kind of construct opened a scope.
type ScopeKind int

const (
	ScopeNamespace ScopeKind = iota
	ScopeClass
	ScopeStruct
	ScopeFunctionBody
	ScopeExtern
	ScopeTemplateBody
	// ScopeBlock is any other balanced brace pair at declaration level
	// (initializer lists, unrecognized blocks). It increases nesting
	// depth but never contributes to the qualified-name path.
	ScopeBlock
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeNamespace:
		return "namespace"
	case ScopeClass:
		return "class"
	case ScopeStruct:
		return "struct"
	case ScopeFunctionBody:
		return "function-body"
	case ScopeExtern:
		return "extern-block"
	case ScopeTemplateBody:
		return "template-body"
	case ScopeBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Scope is one open (or, once popped, closed) nesting level. Anonymous
// namespaces and plain blocks have an empty Name: they deepen nesting but
// do not appear in qualified names.
type Scope struct {
	Kind      ScopeKind
	Name      string
	Path      []string // names of enclosing scopes, outermost first
	OpenLine  int
	CloseLine int // zero while the scope is open
}

// QualifiedName returns the scope's own qualified name, skipping
// anonymous segments.
func (sc Scope) QualifiedName() string {
	parts := make([]string, 0, len(sc.Path)+1)
	for _, p := range sc.Path {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if sc.Name != "" {
		parts = append(parts, sc.Name)
	}
	return strings.Join(parts, "::")
}

// scopeStack is the scope tracker's working state. It is owned by a single
// file's recognizer pass.
type scopeStack struct {
	open   []Scope
	closed []Scope
}

func (st *scopeStack) push(kind ScopeKind, name string, line int) {
	st.open = append(st.open, Scope{
		Kind:     kind,
		Name:     name,
		Path:     st.path(),
		OpenLine: line,
	})
}

func (st *scopeStack) pop(line int) {
	if len(st.open) == 0 {
		return
	}
	sc := st.open[len(st.open)-1]
	st.open = st.open[:len(st.open)-1]
	sc.CloseLine = line
	st.closed = append(st.closed, sc)
}

func (st *scopeStack) top() *Scope {
	if len(st.open) == 0 {
		return nil
	}
	return &st.open[len(st.open)-1]
}

// path returns the name path of all open scopes, outermost first.
// A scope named "A::B" (C++17 nested namespace) contributes both
// segments; anonymous scopes contribute one empty segment each.
func (st *scopeStack) path() []string {
	var parts []string
	for _, sc := range st.open {
		switch sc.Kind {
		case ScopeNamespace, ScopeClass, ScopeStruct:
			if strings.Contains(sc.Name, "::") {
				parts = append(parts, strings.Split(sc.Name, "::")...)
			} else {
				parts = append(parts, sc.Name)
			}
		}
	}
	return parts
}

// enclosingClass returns the name of the innermost open class or struct
// scope, or "" when not inside one.
func (st *scopeStack) enclosingClass() string {
	for i := len(st.open) - 1; i >= 0; i-- {
		switch st.open[i].Kind {
		case ScopeClass, ScopeStruct:
			return st.open[i].Name
		case ScopeFunctionBody:
			return ""
		}
	}
	return ""
}

// atDeclarationLevel reports whether the current position may start a
// declaration: file level, namespace, class/struct body, or extern block.
func (st *scopeStack) atDeclarationLevel() bool {
	top := st.top()
	if top == nil {
		return true
	}
	switch top.Kind {
	case ScopeNamespace, ScopeClass, ScopeStruct, ScopeExtern:
		return true
	}
	return false
}
