package cppscan

import (
	"fmt"
	"strings"
)

// SignatureKey distinguishes overloads of one qualified name by raw
// textual signature. It is not a resolved type signature: two spellings
// of the same type produce different keys, and the disambiguator surfaces
// collisions instead of guessing.
type SignatureKey string

// signatureKeyFor fingerprints a declaration by its normalized parameter
// type text plus the qualifiers that participate in C++ overloading.
func signatureKeyFor(d *Declaration) SignatureKey {
	parts := make([]string, len(d.Params))
	for i, p := range d.Params {
		parts[i] = normalizeParamType(p)
	}
	key := "(" + strings.Join(parts, ",") + ")"
	if d.HasQualifier("const") {
		key += " const"
	}
	if d.HasQualifier("static") {
		key = "static " + key
	}
	return SignatureKey(key)
}

// normalizeParamType strips the default value and the trailing parameter
// name from a raw parameter, leaving (approximately) the type text.
func normalizeParamType(raw string) string {
	if i := strings.Index(raw, "="); i >= 0 {
		raw = raw[:i]
	}
	words := strings.Fields(raw)
	if len(words) > 1 {
		last := words[len(words)-1]
		if identRe.MatchString(last) && !isKeyword(last) {
			words = words[:len(words)-1]
		}
	}
	return strings.Join(words, " ")
}

// disambiguate assigns SignatureKeys to declarations whose qualified name
// occurs more than once in the file and reports key collisions.
// Template specializations keep their keys but never produce collision
// diagnostics against their generic form or each other. A bodiless
// declaration colliding with a definition is the ordinary decl/def pair
// and is not ambiguous.
func disambiguate(decls []Declaration) []Diagnostic {
	groups := map[string][]int{}
	for i := range decls {
		groups[decls[i].QualifiedName] = append(groups[decls[i].QualifiedName], i)
	}

	var diags []Diagnostic
	for _, idxs := range groups {
		if len(idxs) < 2 {
			continue
		}
		byKey := map[SignatureKey]int{}
		for _, i := range idxs {
			d := &decls[i]
			d.SignatureKey = signatureKeyFor(d)
			if d.Kind == DeclTemplateSpecialization {
				continue
			}
			if j, dup := byKey[d.SignatureKey]; dup {
				other := &decls[j]
				if other.IsDefinition() != d.IsDefinition() {
					continue
				}
				diags = append(diags, Diagnostic{
					Kind: DiagAmbiguousOverload,
					Line: d.Span.StartLine,
					Message: fmt.Sprintf(
						"%s: signature key %q collides between lines %d-%d and %d-%d",
						d.QualifiedName, d.SignatureKey,
						other.Span.StartLine, other.Span.EndLine,
						d.Span.StartLine, d.Span.EndLine),
				})
				continue
			}
			byKey[d.SignatureKey] = i
		}
	}
	return diags
}
