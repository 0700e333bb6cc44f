package circuitgen

import (
	"strings"
)

// qualifiers maps the package names generated code may refer to onto their
// import paths, in import order.
var qualifiers = []struct {
	name string
	path string
}{
	{"frontend", importFrontend},
	{"bfl", importBFL},
	{"schema", importSchema},
	{"circuits", importCircuits},
}

// imports returns the import paths of the packages referenced by decls.
func imports(decls []Decl) []string {
	var text []string
	for _, d := range decls {
		text = append(text, declText(d)...)
	}
	var paths []string
	for _, q := range qualifiers {
		for _, t := range text {
			if refers(t, q.name) {
				paths = append(paths, q.path)
				break
			}
		}
	}
	return paths
}

// declText returns the type expressions and statements of d.
func declText(d Decl) []string {
	switch d := d.(type) {
	case *StructDecl:
		text := make([]string, len(d.Fields))
		for i, f := range d.Fields {
			text[i] = f.Type.String()
		}
		return text
	case *EnumDecl:
		return []string{Variable}
	case *AliasDecl:
		return []string{d.Target.String()}
	case *ConstDecl:
		return []string{d.Value}
	case *FuncDecl:
		var text []string
		for _, p := range d.Params {
			text = append(text, p.Type.String())
		}
		for _, r := range d.Results {
			text = append(text, r.String())
		}
		return append(text, d.Body...)
	}
	return nil
}

// refers reports whether src contains a selector on the package name pkg.
func refers(src, pkg string) bool {
	for i := 0; ; {
		j := strings.Index(src[i:], pkg+".")
		if j < 0 {
			return false
		}
		j += i
		if j == 0 || !isIdent(src[j-1]) {
			return true
		}
		i = j + len(pkg)
	}
}

func isIdent(c byte) bool {
	return c == '_' || c == '.' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
