package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/cxdoc/cxdoc/internal/cxxtok"
)

// binding holds what every cursor of one parse shares.
type binding struct {
	src []byte
	loc Locator
}

// NewCursor returns the translation unit cursor of res. Positions and
// original text are resolved through loc; a nil loc treats res.Source as
// the original text.
func NewCursor(res *ParseResult, loc Locator) Cursor {
	if loc == nil {
		loc = PlainLocator(res.FilePath, res.Source)
	}
	b := &binding{src: res.Source, loc: loc}
	return &cursor{b: b, kind: TranslationUnit, node: res.Root, body: res.Root, name: res.FilePath}
}

func (b *binding) expanded(start, end uint32) string {
	if start >= end || int(end) > len(b.src) {
		return ""
	}
	return string(b.src[start:end])
}

// original returns the original text of the parsed range [start, end), or
// the parsed text when the range does not map into a single file.
func (b *binding) original(start, end uint32) string {
	if start >= end {
		return ""
	}
	f1, s, ok1 := b.loc.Locate(int(start), false)
	f2, e, ok2 := b.loc.Locate(int(end), true)
	if ok1 && ok2 && f1 == f2 && s <= e {
		if text, ok := b.loc.Text(f1, s, e); ok {
			return text
		}
	}
	return b.expanded(start, end)
}

func (b *binding) location(off uint32) Location {
	file, srcOff, ok := b.loc.Locate(int(off), false)
	if !ok {
		return Location{}
	}
	line, col, _ := b.loc.LineCol(file, srcOff)
	return Location{File: file, Line: line, Column: col, Offset: srcOff}
}

func (b *binding) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return b.expanded(n.StartByte(), n.EndByte())
}

// declarations binds the named children of a declaration list.
func (b *binding) declarations(list *sitter.Node, class string) []Cursor {
	var out []Cursor
	for i := 0; i < int(list.NamedChildCount()); i++ {
		out = append(out, b.declaration(list.NamedChild(i), nil, class)...)
	}
	return out
}

// declaration binds one item of a declaration list. tmpl is the template
// declaration that n is the body of. class is the name of the enclosing
// class, empty outside classes.
func (b *binding) declaration(n, tmpl *sitter.Node, class string) []Cursor {
	anchor := n
	if tmpl != nil {
		anchor = tmpl
	}

	switch t := n.Type(); {
	case t == nodeComment || t == "access_specifier" || strings.HasPrefix(t, "preproc_"):
		return nil
	case t == nodeNamespace:
		body := n.ChildByFieldName("body")
		if body == nil {
			return nil
		}
		return []Cursor{&cursor{
			b: b, kind: Namespace, node: n, anchor: anchor, body: body,
			name: cxxtok.Normalize(b.text(n.ChildByFieldName("name"))),
			end:  body.StartByte(),
		}}
	case t == nodeLinkage:
		body := n.ChildByFieldName("body")
		if body == nil {
			return nil
		}
		return []Cursor{&cursor{
			b: b, kind: LinkageSpec, node: n, anchor: anchor, body: body,
			name: strings.Trim(b.text(n.ChildByFieldName("value")), `"`),
			end:  body.StartByte(),
		}}
	case t == nodeClass || t == nodeStruct:
		if c := b.class(n, anchor, tmpl); c != nil {
			return []Cursor{c}
		}
		return nil
	case t == nodeTemplateDeclaration:
		if inner := templateBody(n); inner != nil {
			return b.declaration(inner, n, class)
		}
		return nil
	case t == nodeDeclaration || t == nodeFieldDeclaration || t == nodeFunctionDefinition:
		return b.declarators(n, anchor, tmpl, class)
	}
	return []Cursor{b.unexposed(n, anchor)}
}

func (b *binding) unexposed(n, anchor *sitter.Node) *cursor {
	return &cursor{b: b, kind: Unexposed, node: n, anchor: anchor, end: n.EndByte()}
}

// class binds a class or struct definition. Forward declarations and
// elaborated type specifiers have no body and are not bound.
func (b *binding) class(n, anchor, tmpl *sitter.Node) *cursor {
	body := n.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	kind := ClassDecl
	if n.Type() == nodeStruct {
		kind = StructDecl
	}
	return &cursor{
		b: b, kind: kind, node: n, anchor: anchor, body: body, tmpl: tmpl,
		name: cxxtok.Normalize(b.text(n.ChildByFieldName("name"))),
		end:  body.StartByte(),
	}
}

// declarators binds the functions declared by a declaration, and the class
// it defines in its type specifier if any.
func (b *binding) declarators(n, anchor, tmpl *sitter.Node, class string) []Cursor {
	var out []Cursor
	typ := n.ChildByFieldName("type")
	if typ != nil && (typ.Type() == nodeClass || typ.Type() == nodeStruct) {
		if c := b.class(typ, anchor, tmpl); c != nil {
			out = append(out, c)
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		d := n.NamedChild(i)
		if !declaratorNodeTypes[d.Type()] || (typ != nil && d.StartByte() < typ.EndByte()) {
			continue
		}
		fd := functionDeclarator(d)
		if fd == nil {
			continue
		}
		out = append(out, b.function(n, anchor, tmpl, typ, fd, class))
	}
	if len(out) == 0 {
		out = append(out, b.unexposed(n, anchor))
	}
	return out
}

func (b *binding) function(n, anchor, tmpl, typ, fd *sitter.Node, class string) *cursor {
	nameNode := fd.ChildByFieldName("declarator")
	name := cxxtok.Normalize(b.text(nameNode))

	kind := FunctionDecl
	if class != "" {
		switch {
		case nameNode != nil && nameNode.Type() == nodeDestructorName:
			kind = Destructor
		case typ == nil && name == baseName(class):
			kind = Constructor
		default:
			kind = CXXMethod
		}
	}

	end := n.EndByte()
	if init := findChild(n, nodeFieldInitializers); init != nil {
		end = init.StartByte()
	} else if body := n.ChildByFieldName("body"); body != nil {
		end = body.StartByte()
	}

	return &cursor{
		b: b, kind: kind, node: n, anchor: anchor, tmpl: tmpl, fd: fd,
		name: name, end: end,
	}
}

// templateBody returns the declaration a template declaration introduces.
func templateBody(n *sitter.Node) *sitter.Node {
	for i := int(n.NamedChildCount()) - 1; i >= 0; i-- {
		c := n.NamedChild(i)
		if c.Type() != nodeTemplateParams && c.Type() != nodeComment {
			return c
		}
	}
	return nil
}

// functionDeclarator returns the function declarator d declares through
// pointer and reference declarators, or nil if d does not declare a
// function. Pointers to functions are variables.
func functionDeclarator(d *sitter.Node) *sitter.Node {
	for d != nil {
		switch d.Type() {
		case nodeFunctionDeclarator:
			if inner := d.ChildByFieldName("declarator"); inner != nil && inner.Type() == nodeParenDeclarator {
				return nil
			}
			return d
		case "pointer_declarator", "reference_declarator", "init_declarator", "attributed_declarator":
			d = innerDeclarator(d)
		default:
			return nil
		}
	}
	return nil
}

// innerDeclarator returns the declarator nested in d.
func innerDeclarator(d *sitter.Node) *sitter.Node {
	if inner := d.ChildByFieldName("declarator"); inner != nil {
		return inner
	}
	for i := 0; i < int(d.NamedChildCount()); i++ {
		c := d.NamedChild(i)
		if declaratorNodeTypes[c.Type()] || c.Type() == "variadic_declarator" {
			return c
		}
	}
	return nil
}

// declaredName returns the name node inside a declarator, nil for abstract
// declarators.
func declaredName(d *sitter.Node) *sitter.Node {
	for d != nil {
		if isNameNode(d) {
			return d
		}
		d = innerDeclarator(d)
	}
	return nil
}

func findChild(n *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c.Type() == nodeType {
			return c
		}
	}
	return nil
}

// baseName strips template arguments and qualification from a class name.
func baseName(name string) string {
	if i := strings.IndexByte(name, '<'); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
	}
	return name
}

// parameters binds the function parameters of a parameter list.
func (b *binding) parameters(list *sitter.Node) []Cursor {
	var out []Cursor
	if list == nil {
		return nil
	}
	for i := 0; i < int(list.NamedChildCount()); i++ {
		p := list.NamedChild(i)
		if !parameterNodeTypes[p.Type()] {
			continue
		}
		out = append(out, b.parameter(p, ParmDecl))
	}
	// f(void) declares no parameters.
	if len(out) == 1 && b.voidParameter(out[0].(*cursor).node) {
		return nil
	}
	return out
}

func (b *binding) voidParameter(p *sitter.Node) bool {
	if p.Type() != "parameter_declaration" || p.ChildByFieldName("declarator") != nil {
		return false
	}
	typ := p.ChildByFieldName("type")
	return typ != nil && b.text(typ) == "void"
}

// templateParameters binds the parameters of a template declaration.
func (b *binding) templateParameters(tmpl *sitter.Node) []Cursor {
	if tmpl == nil {
		return nil
	}
	list := tmpl.ChildByFieldName("parameters")
	if list == nil {
		list = findChild(tmpl, nodeTemplateParams)
	}
	if list == nil {
		return nil
	}
	var out []Cursor
	for i := 0; i < int(list.NamedChildCount()); i++ {
		p := list.NamedChild(i)
		if kind, ok := templateParameterKinds[p.Type()]; ok {
			out = append(out, b.parameter(p, kind))
		}
	}
	return out
}

func (b *binding) parameter(p *sitter.Node, kind CursorKind) *cursor {
	c := &cursor{b: b, kind: kind, node: p, anchor: p, end: p.EndByte()}
	c.nameNode = parameterName(p)
	if c.nameNode != nil {
		c.name = cxxtok.Normalize(b.text(c.nameNode))
	}
	return c
}

func parameterName(p *sitter.Node) *sitter.Node {
	if n := p.ChildByFieldName("name"); n != nil {
		return n
	}
	if d := p.ChildByFieldName("declarator"); d != nil {
		return declaredName(d)
	}
	switch p.Type() {
	case "type_parameter_declaration", "variadic_type_parameter_declaration":
		return findChild(p, "type_identifier")
	case "template_template_parameter_declaration":
		for i := 0; i < int(p.NamedChildCount()); i++ {
			if c := p.NamedChild(i); c.Type() != nodeTemplateParams {
				return parameterName(c)
			}
		}
	}
	return nil
}
