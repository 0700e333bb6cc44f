// Package printer renders a circuitgen file as gofmt formatted Go source.
package printer

import (
	"bytes"
	"fmt"
	"go/format"
	"io"
	"sort"
	"strings"

	"github.com/ing-bank/zkflow-sub006/circuitgen"
	"github.com/ing-bank/zkflow-sub006/witness"
)

// Header is the first line of every generated file.
const Header = "// Code generated by zkflow. DO NOT EDIT."

// Source returns the formatted source of f.
func Source(f *circuitgen.File) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(Header + "\n\n")
	fmt.Fprintf(&buf, "package %s\n", f.Package)
	if len(f.Imports) > 0 {
		imports := append([]string(nil), f.Imports...)
		sort.Strings(imports)
		buf.WriteString("\nimport (\n")
		for _, p := range imports {
			fmt.Fprintf(&buf, "\t%q\n", p)
		}
		buf.WriteString(")\n")
	}
	for _, d := range f.Decls {
		buf.WriteString("\n")
		if err := printDecl(&buf, d); err != nil {
			return nil, err
		}
	}
	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("generated source does not parse: %w", err)
	}
	return out, nil
}

// Layout generates the circuit types and group functions of layout l in a
// package named after it and returns their source.
func Layout(l *witness.Layout) ([]byte, error) {
	g := circuitgen.NewGenerator(circuitgen.PackageName(l.Name), l.Mode, circuitgen.NewRegistry())
	if err := g.Groups(l); err != nil {
		return nil, fmt.Errorf("could not generate layout %s: %w", l.Name, err)
	}
	return Source(g.File())
}

// Print writes the formatted source of f to w.
func Print(w io.Writer, f *circuitgen.File) error {
	src, err := Source(f)
	if err != nil {
		return err
	}
	_, err = w.Write(src)
	return err
}

func doc(buf *bytes.Buffer, text string) {
	if text == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		buf.WriteString(strings.TrimRight("// "+line, " ") + "\n")
	}
}

func printDecl(buf *bytes.Buffer, d circuitgen.Decl) error {
	switch d := d.(type) {
	case *circuitgen.StructDecl:
		doc(buf, d.Doc)
		fmt.Fprintf(buf, "type %s struct {\n", d.Name)
		for _, f := range d.Fields {
			fmt.Fprintf(buf, "\t%s %s", f.Name, f.Type)
			if f.Comment != "" {
				fmt.Fprintf(buf, " // %s", f.Comment)
			}
			buf.WriteString("\n")
		}
		buf.WriteString("}\n")

	case *circuitgen.EnumDecl:
		doc(buf, d.Doc)
		fmt.Fprintf(buf, "type %s = %s\n\n", d.Name, circuitgen.Variable)
		buf.WriteString("const (\n")
		for i, v := range d.Variants {
			if i == 0 {
				fmt.Fprintf(buf, "\t%s%s = iota\n", d.Name, circuitgen.Exported(v))
				continue
			}
			fmt.Fprintf(buf, "\t%s%s\n", d.Name, circuitgen.Exported(v))
		}
		buf.WriteString(")\n")

	case *circuitgen.AliasDecl:
		doc(buf, d.Doc)
		fmt.Fprintf(buf, "type %s = %s\n", d.Name, d.Target)

	case *circuitgen.ConstDecl:
		doc(buf, d.Doc)
		fmt.Fprintf(buf, "const %s = %s\n", d.Name, d.Value)

	case *circuitgen.FuncDecl:
		doc(buf, d.Doc)
		params := make([]string, len(d.Params))
		for i, p := range d.Params {
			params[i] = p.Name + " " + p.Type.String()
		}
		fmt.Fprintf(buf, "func %s(%s)", d.Name, strings.Join(params, ", "))
		switch len(d.Results) {
		case 0:
		case 1:
			fmt.Fprintf(buf, " %s", d.Results[0])
		default:
			results := make([]string, len(d.Results))
			for i, r := range d.Results {
				results[i] = r.String()
			}
			fmt.Fprintf(buf, " (%s)", strings.Join(results, ", "))
		}
		buf.WriteString(" {\n")
		for _, line := range d.Body {
			buf.WriteString("\t" + line + "\n")
		}
		buf.WriteString("}\n")

	default:
		return fmt.Errorf("unknown declaration %T", d)
	}
	return nil
}
