package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// FunctionNode represents a parsed function or method declaration.
type FunctionNode struct {
	Name       string
	StartLine  int
	EndLine    int
	Parameters []string
	Body       *sitter.Node
	Node       *sitter.Node
}

// Lines returns the declaration's line span.
func (f FunctionNode) Lines() int {
	return f.EndLine - f.StartLine + 1
}

// TypeNode represents a parsed type/class declaration.
type TypeNode struct {
	Name      string
	StartLine int
	EndLine   int
	Methods   []FunctionNode
	Node      *sitter.Node
}

// Lines returns the declaration's line span.
func (t TypeNode) Lines() int {
	return t.EndLine - t.StartLine + 1
}

// ImportNode represents one import/include/require statement.
type ImportNode struct {
	Path string
	Line int
}

// GetFunctions extracts all function definitions from parsed code.
func GetFunctions(result *ParseResult) []FunctionNode {
	var functions []FunctionNode
	root := result.Tree.RootNode()

	funcTypes := makeSet(functionNodeTypes(result.Language))

	WalkTyped(root, result.Source, func(node *sitter.Node, nodeType string, source []byte) bool {
		if funcTypes[nodeType] {
			functions = append(functions, extractFunction(node, source, result.Language))
		}
		return true
	})

	return functions
}

// GetTypes extracts all type/class definitions with their methods.
func GetTypes(result *ParseResult) []TypeNode {
	var types []TypeNode
	root := result.Tree.RootNode()

	classTypes := makeSet(classNodeTypes(result.Language))
	funcTypes := makeSet(functionNodeTypes(result.Language))

	WalkTyped(root, result.Source, func(node *sitter.Node, nodeType string, source []byte) bool {
		if !classTypes[nodeType] {
			return true
		}
		tn := TypeNode{
			StartLine: int(node.StartPoint().Row) + 1,
			EndLine:   int(node.EndPoint().Row) + 1,
			Node:      node,
		}
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			tn.Name = GetNodeText(nameNode, source)
		}
		// Collect the methods declared inside the type body.
		WalkTyped(node, source, func(inner *sitter.Node, innerType string, src []byte) bool {
			if inner != node && funcTypes[innerType] {
				tn.Methods = append(tn.Methods, extractFunction(inner, src, result.Language))
				return false
			}
			return true
		})
		if tn.Name != "" {
			types = append(types, tn)
		}
		return false // don't report nested classes twice
	})

	// Go methods hang off the receiver, not the type body.
	if result.Language == LangGo {
		attachGoMethods(result, types)
	}

	return types
}

// attachGoMethods associates method_declaration nodes with their receiver type.
func attachGoMethods(result *ParseResult, types []TypeNode) {
	byName := make(map[string]int, len(types))
	for i, t := range types {
		byName[t.Name] = i
	}

	WalkTyped(result.Tree.RootNode(), result.Source, func(node *sitter.Node, nodeType string, source []byte) bool {
		if nodeType != "method_declaration" {
			return true
		}
		recv := node.ChildByFieldName("receiver")
		if recv == nil {
			return true
		}
		recvText := GetNodeText(recv, source)
		recvText = strings.Trim(recvText, "()")
		recvText = strings.TrimSpace(recvText)
		fields := strings.Fields(recvText)
		if len(fields) == 0 {
			return true
		}
		typeName := strings.TrimPrefix(fields[len(fields)-1], "*")
		if idx, ok := byName[typeName]; ok {
			types[idx].Methods = append(types[idx].Methods, extractFunction(node, source, LangGo))
		}
		return false
	})
}

// GetImports extracts import/include statements from parsed code.
func GetImports(result *ParseResult) []ImportNode {
	var imports []ImportNode
	importTypes := makeSet(importNodeTypes(result.Language))

	WalkTyped(result.Tree.RootNode(), result.Source, func(node *sitter.Node, nodeType string, source []byte) bool {
		if !importTypes[nodeType] {
			return true
		}
		line := int(node.StartPoint().Row) + 1
		// The import path is the first string literal inside the statement;
		// languages without string paths (Java, Python) use the raw spec text.
		path := importPathText(node, source)
		if path != "" {
			imports = append(imports, ImportNode{Path: path, Line: line})
		}
		return false
	})

	return imports
}

func importPathText(node *sitter.Node, source []byte) string {
	var path string
	Walk(node, source, func(n *sitter.Node, src []byte) bool {
		switch n.Type() {
		case "interpreted_string_literal", "string_literal", "string", "raw_string_literal":
			path = strings.Trim(GetNodeText(n, src), `"'`+"`")
			return false
		case "scoped_identifier", "dotted_name", "qualified_identifier":
			path = GetNodeText(n, src)
			return false
		}
		return true
	})
	return path
}

// DocComment reports whether the declaration node has an attached comment
// immediately above it.
func DocComment(node *sitter.Node) bool {
	prev := node.PrevNamedSibling()
	if prev == nil {
		return false
	}
	if !strings.Contains(prev.Type(), "comment") {
		return false
	}
	return prev.EndPoint().Row+1 == node.StartPoint().Row
}

// extractFunction extracts name, span, parameters and body from a
// function-shaped node.
func extractFunction(node *sitter.Node, source []byte, lang Language) FunctionNode {
	fn := FunctionNode{
		StartLine: int(node.StartPoint().Row) + 1,
		EndLine:   int(node.EndPoint().Row) + 1,
		Node:      node,
	}

	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		fn.Name = GetNodeText(nameNode, source)
	} else if lang == LangC || lang == LangCPP {
		// C/C++ function names are nested in the declarator
		if declNode := node.ChildByFieldName("declarator"); declNode != nil {
			if nameNode := declNode.ChildByFieldName("declarator"); nameNode != nil {
				fn.Name = GetNodeText(nameNode, source)
			}
		}
	}

	fn.Parameters = extractParameters(node, source, lang)

	// Body field naming varies by grammar.
	fn.Body = node.ChildByFieldName("body")
	if fn.Body == nil {
		fn.Body = node.ChildByFieldName("block")
	}
	if fn.Body == nil {
		fn.Body = node.ChildByFieldName("body_statement")
	}

	return fn
}

// extractParameters returns the declared parameter names of a function.
// Go parameter declarations may bind several names to one type, so each
// identifier counts separately.
func extractParameters(node *sitter.Node, source []byte, lang Language) []string {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		params = node.ChildByFieldName("parameter_list")
	}
	if params == nil {
		return nil
	}

	var names []string
	for i := range int(params.NamedChildCount()) {
		child := params.NamedChild(i)
		childType := child.Type()
		if strings.Contains(childType, "comment") {
			continue
		}
		switch lang {
		case LangGo:
			if childType != "parameter_declaration" && childType != "variadic_parameter_declaration" {
				continue
			}
			found := false
			for j := range int(child.NamedChildCount()) {
				sub := child.NamedChild(j)
				if sub.Type() == "identifier" {
					names = append(names, GetNodeText(sub, source))
					found = true
				}
			}
			if !found {
				// Unnamed parameter (type only) still counts toward arity.
				names = append(names, GetNodeText(child, source))
			}
		default:
			if strings.Contains(childType, "parameter") || childType == "identifier" {
				if nameNode := child.ChildByFieldName("name"); nameNode != nil {
					names = append(names, GetNodeText(nameNode, source))
				} else {
					names = append(names, GetNodeText(child, source))
				}
			}
		}
	}
	return names
}

// functionNodeTypes returns the AST node types for functions in each language.
func functionNodeTypes(lang Language) []string {
	switch lang {
	case LangGo:
		return []string{"function_declaration", "method_declaration"}
	case LangRust:
		return []string{"function_item"}
	case LangPython:
		return []string{"function_definition"}
	case LangTypeScript, LangJavaScript, LangTSX:
		return []string{"function_declaration", "function", "arrow_function", "method_definition"}
	case LangJava:
		return []string{"method_declaration", "constructor_declaration"}
	case LangC, LangCPP:
		return []string{"function_definition"}
	case LangCSharp:
		return []string{"method_declaration", "constructor_declaration"}
	case LangRuby:
		return []string{"method", "singleton_method"}
	case LangPHP:
		return []string{"function_definition", "method_declaration"}
	default:
		return nil
	}
}

// classNodeTypes returns the AST node types for type declarations in each language.
func classNodeTypes(lang Language) []string {
	switch lang {
	case LangGo:
		return []string{"type_spec"}
	case LangRust:
		return []string{"struct_item", "enum_item"}
	case LangPython:
		return []string{"class_definition"}
	case LangTypeScript, LangJavaScript, LangTSX:
		return []string{"class_declaration", "class"}
	case LangJava:
		return []string{"class_declaration", "interface_declaration"}
	case LangCPP:
		return []string{"class_specifier", "struct_specifier"}
	case LangCSharp:
		return []string{"class_declaration", "interface_declaration", "struct_declaration"}
	case LangRuby:
		return []string{"class", "module"}
	case LangPHP:
		return []string{"class_declaration", "interface_declaration", "trait_declaration"}
	default:
		return nil
	}
}

// importNodeTypes returns the AST node types for import statements in each language.
func importNodeTypes(lang Language) []string {
	switch lang {
	case LangGo:
		// Grouped imports share one declaration; specs carry the paths.
		return []string{"import_spec"}
	case LangRust:
		return []string{"use_declaration"}
	case LangPython:
		return []string{"import_statement", "import_from_statement"}
	case LangTypeScript, LangJavaScript, LangTSX:
		return []string{"import_statement"}
	case LangJava:
		return []string{"import_declaration"}
	case LangC, LangCPP:
		return []string{"preproc_include"}
	case LangCSharp:
		return []string{"using_directive"}
	case LangPHP:
		return []string{"namespace_use_declaration"}
	default:
		return nil
	}
}

// makeSet converts a slice to a map for O(1) lookups.
func makeSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
