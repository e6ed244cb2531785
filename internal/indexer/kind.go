package indexer

import (
	"regexp"
	"strings"

	"github.com/jgivens/appledocs-mcp/pkg/types"
)

var (
	leadingAttrPattern = regexp.MustCompile(`^(@\w+(\([^)]*\))?\s+)+`)
	operatorSymbols    = regexp.MustCompile(`^(prefix |postfix |infix )?(static )?func\s+[^A-Za-z_(]`)
)

// InferKind classifies a documented entity from its declaration. Pages with
// no declaration are prose. The declaration is collapsed to one line and
// stripped of leading attributes before keyword matching, so
// "@MainActor\npublic final class Foo" still reads as a class.
func InferKind(declaration string) types.Kind {
	if strings.TrimSpace(declaration) == "" {
		return types.KindArticle
	}

	decl := strings.Join(strings.Fields(declaration), " ")
	decl = leadingAttrPattern.ReplaceAllString(decl, "")
	decl = strings.TrimSpace(decl)

	switch {
	case hasKeyword(decl, "macro"):
		return types.KindMacro

	case hasKeyword(decl, "protocol"):
		return types.KindProtocol

	case hasKeyword(decl, "actor"), hasKeyword(decl, "class") && !isClassModifierOnly(decl):
		return types.KindClass

	case hasKeyword(decl, "struct"):
		return types.KindStruct

	case hasKeyword(decl, "enum"):
		return types.KindEnum

	// Enum cases fold into the owning enumeration's kind.
	case strings.HasPrefix(decl, "case "), strings.HasPrefix(decl, "indirect case "):
		return types.KindEnum

	case hasKeyword(decl, "associatedtype"), hasKeyword(decl, "typealias"):
		return types.KindTypeAlias

	case isOperatorDecl(decl):
		return types.KindOperator

	case hasKeyword(decl, "var"), hasKeyword(decl, "let"):
		return types.KindProperty

	// Subscripts are parameterized accessors, closer to methods than to
	// stored properties.
	case hasKeyword(decl, "subscript"), hasKeyword(decl, "func"), strings.HasPrefix(decl, "init"),
		strings.HasPrefix(decl, "convenience init"), strings.HasPrefix(decl, "required init"),
		strings.HasPrefix(decl, "deinit"):
		return types.KindMethod

	default:
		return types.KindUnknown
	}
}

// hasKeyword reports whether word appears as a standalone token before the
// declaration's opening brace or parenthesis, which keeps "class" inside a
// generic constraint from misclassifying a method.
func hasKeyword(decl, word string) bool {
	head := decl
	if i := strings.IndexAny(decl, "({"); i >= 0 {
		head = decl[:i]
	}
	for _, tok := range strings.Fields(head) {
		if tok == word {
			return true
		}
		// Stop scanning once the entity name appears after a type keyword.
		if tok == ":" {
			break
		}
	}
	return false
}

// isClassModifierOnly detects "class func" and "class var", where class is a
// member modifier rather than a type declaration.
func isClassModifierOnly(decl string) bool {
	return strings.Contains(decl, "class func ") ||
		strings.Contains(decl, "class var ") ||
		strings.Contains(decl, "class let ")
}

func isOperatorDecl(decl string) bool {
	if strings.Contains(decl, " operator ") ||
		strings.HasPrefix(decl, "prefix operator") ||
		strings.HasPrefix(decl, "postfix operator") ||
		strings.HasPrefix(decl, "infix operator") {
		return true
	}
	// "static func == (lhs: ..." and friends: a func whose name starts with
	// an operator symbol.
	return operatorSymbols.MatchString(decl)
}
