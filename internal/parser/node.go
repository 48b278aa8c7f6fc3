package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/cxdoc/cxdoc/internal/cxxtok"
	"github.com/cxdoc/cxdoc/internal/entity"
)

// cursor is the Cursor of one tree-sitter node.
type cursor struct {
	b    *binding
	kind CursorKind
	// node is the declaration. Its start is the start of the spelling.
	node *sitter.Node
	// anchor is the node documentation comments precede: the template
	// declaration of templated entities, node otherwise.
	anchor *sitter.Node
	// end is the end of the spelling in the parsed text.
	end  uint32
	name string
	// nameNode is the declared name of parameters.
	nameNode *sitter.Node
	// body holds the members of scopes and classes.
	body *sitter.Node
	tmpl *sitter.Node
	// fd is the function declarator of functions.
	fd *sitter.Node

	children []Cursor
	bound    bool
}

func (c *cursor) Kind() CursorKind { return c.kind }

func (c *cursor) Name() string { return c.name }

func (c *cursor) Spelling() string {
	if c.kind == TranslationUnit {
		return ""
	}
	text := strings.TrimSpace(c.b.original(c.node.StartByte(), c.end))
	if c.kind != ParmDecl {
		text = strings.TrimSpace(strings.TrimSuffix(text, ";"))
	}
	return text
}

func (c *cursor) Location() Location {
	if c.kind == TranslationUnit {
		return Location{File: c.name}
	}
	return c.b.location(c.node.StartByte())
}

func (c *cursor) Comment() string {
	if c.anchor == nil {
		return ""
	}
	return c.b.comment(c.anchor)
}

func (c *cursor) Children() []Cursor {
	if c.bound {
		return c.children
	}
	c.bound = true

	switch c.kind {
	case TranslationUnit, Namespace:
		c.children = c.b.declarations(c.body, "")
	case LinkageSpec:
		if c.body.Type() == nodeDeclarationList {
			c.children = c.b.declarations(c.body, "")
		} else {
			c.children = c.b.declaration(c.body, nil, "")
		}
	case ClassDecl, StructDecl:
		c.children = append(c.b.templateParameters(c.tmpl), c.b.declarations(c.body, c.name)...)
	case FunctionDecl, CXXMethod, Constructor, Destructor:
		c.children = append(c.b.templateParameters(c.tmpl), c.b.parameters(c.fd.ChildByFieldName("parameters"))...)
	}
	return c.children
}

func (c *cursor) Type() entity.Type {
	switch c.kind {
	case FunctionDecl, CXXMethod, Constructor, Destructor:
		return c.functionType()
	case ParmDecl, NonTypeTemplateParameter:
		return entity.NewType(c.variableType())
	case ClassDecl, StructDecl:
		return entity.NewType(c.name)
	}
	return entity.InvalidType
}

func (c *cursor) ResultType() entity.Type {
	switch c.kind {
	case FunctionDecl, CXXMethod:
	case Constructor, Destructor:
		return entity.NewType("void")
	default:
		return entity.InvalidType
	}

	if tr := findChild(c.fd, nodeTrailingReturn); tr != nil {
		toks := cxxtok.Split(c.b.text(tr))
		if len(toks) > 0 && toks[0] == "->" {
			toks = toks[1:]
		}
		return entity.NewType(cxxtok.Join(toks))
	}
	prefix := cxxtok.Split(c.b.expanded(c.node.StartByte(), c.fd.StartByte()))
	return entity.NewType(cxxtok.Join(cxxtok.StripSpecifiers(prefix)))
}

// functionType spells the function type the way a compiler prints it,
// e.g. "int (const char*, ...)".
func (c *cursor) functionType() entity.Type {
	result := c.ResultType()
	if !result.Valid {
		return entity.InvalidType
	}
	var params []string
	for _, p := range c.Children() {
		if p.Kind() == ParmDecl {
			params = append(params, p.Type().Spelling)
		}
	}
	if c.variadic() {
		params = append(params, "...")
	}
	return entity.NewType(result.Spelling + " (" + strings.Join(params, ", ") + ")")
}

// variadic reports whether the parameter list ends in a C-style ellipsis.
func (c *cursor) variadic() bool {
	list := c.fd.ChildByFieldName("parameters")
	if list == nil {
		return false
	}
	for i := int(list.ChildCount()) - 1; i >= 0; i-- {
		switch list.Child(i).Type() {
		case ")", nodeComment:
			continue
		case "...", "variadic_parameter":
			return true
		default:
			return false
		}
	}
	return false
}

// variableType is the parsed text of a parameter without its name and
// default value.
func (c *cursor) variableType() string {
	start, end := c.node.StartByte(), c.node.EndByte()
	if def := c.node.ChildByFieldName("default_value"); def != nil {
		end = def.StartByte()
	} else if def := c.node.ChildByFieldName("default_type"); def != nil {
		end = def.StartByte()
	}

	var text string
	if n := c.nameNode; n != nil && n.StartByte() >= start && n.EndByte() <= end {
		text = c.b.expanded(start, n.StartByte()) + " " + c.b.expanded(n.EndByte(), end)
	} else {
		text = c.b.expanded(start, end)
	}

	toks := cxxtok.Split(text)
	if len(toks) > 0 && toks[len(toks)-1] == "=" {
		toks = toks[:len(toks)-1]
	}
	return cxxtok.Join(toks)
}
