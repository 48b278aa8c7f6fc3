package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
)

// newCppParser creates a tree-sitter parser configured for C++.
func newCppParser() (*sitter.Parser, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(cpp.GetLanguage())
	return parser, nil
}

// Node types of the tree-sitter C++ grammar the binding looks at.
const (
	nodeTranslationUnit     = "translation_unit"
	nodeNamespace           = "namespace_definition"
	nodeLinkage             = "linkage_specification"
	nodeDeclarationList     = "declaration_list"
	nodeFieldList           = "field_declaration_list"
	nodeClass               = "class_specifier"
	nodeStruct              = "struct_specifier"
	nodeDeclaration         = "declaration"
	nodeFieldDeclaration    = "field_declaration"
	nodeFunctionDefinition  = "function_definition"
	nodeTemplateDeclaration = "template_declaration"
	nodeTemplateParams      = "template_parameter_list"
	nodeFunctionDeclarator  = "function_declarator"
	nodeParenDeclarator     = "parenthesized_declarator"
	nodeParameterList       = "parameter_list"
	nodeTrailingReturn      = "trailing_return_type"
	nodeFieldInitializers   = "field_initializer_list"
	nodeDestructorName      = "destructor_name"
	nodeOperatorName        = "operator_name"
	nodeOperatorCast        = "operator_cast"
	nodeQualifiedIdentifier = "qualified_identifier"
	nodeComment             = "comment"
)

// declaratorNodeTypes are the node types that may fill the declarator field
// of a declaration.
var declaratorNodeTypes = map[string]bool{
	"function_declarator":      true,
	"pointer_declarator":       true,
	"reference_declarator":     true,
	"array_declarator":         true,
	"parenthesized_declarator": true,
	"init_declarator":          true,
	"attributed_declarator":    true,
	"identifier":               true,
	"field_identifier":         true,
	"qualified_identifier":     true,
	"operator_name":            true,
	"destructor_name":          true,
	"template_function":        true,
}

// parameterNodeTypes are the function parameter node types.
var parameterNodeTypes = map[string]bool{
	"parameter_declaration":          true,
	"optional_parameter_declaration": true,
	"variadic_parameter_declaration": true,
}

// templateParameterKinds maps template parameter node types to cursor kinds.
var templateParameterKinds = map[string]CursorKind{
	"type_parameter_declaration":              TemplateTypeParameter,
	"optional_type_parameter_declaration":     TemplateTypeParameter,
	"variadic_type_parameter_declaration":     TemplateTypeParameter,
	"parameter_declaration":                   NonTypeTemplateParameter,
	"optional_parameter_declaration":          NonTypeTemplateParameter,
	"variadic_parameter_declaration":          NonTypeTemplateParameter,
	"template_template_parameter_declaration": TemplateTemplateParameter,
}

// isNameNode reports whether n is the innermost part of a declarator.
func isNameNode(n *sitter.Node) bool {
	switch n.Type() {
	case "identifier", "field_identifier", "type_identifier",
		nodeQualifiedIdentifier, nodeOperatorName, nodeDestructorName,
		nodeOperatorCast, "template_function", "template_method":
		return true
	}
	return false
}
