package types

// Kind is the structural classification of a documented entity.
type Kind string

const (
	KindProtocol   Kind = "protocol"
	KindClass      Kind = "class"
	KindStruct     Kind = "struct"
	KindEnum       Kind = "enum"
	KindFunction   Kind = "function"
	KindProperty   Kind = "property"
	KindMethod     Kind = "method"
	KindOperator   Kind = "operator"
	KindTypeAlias  Kind = "typealias"
	KindMacro      Kind = "macro"
	KindArticle    Kind = "article"
	KindTutorial   Kind = "tutorial"
	KindCollection Kind = "collection"
	KindFramework  Kind = "framework"
	KindUnknown    Kind = "unknown"
)

// ParseKind maps a storage token back to a Kind. Unrecognized tokens,
// including the empty string, come back as KindUnknown so a stale row can
// never crash the ranking path.
func ParseKind(s string) Kind {
	switch Kind(s) {
	case KindProtocol, KindClass, KindStruct, KindEnum, KindFunction,
		KindProperty, KindMethod, KindOperator, KindTypeAlias, KindMacro,
		KindArticle, KindTutorial, KindCollection, KindFramework:
		return Kind(s)
	}
	return KindUnknown
}

// IsCoreType reports whether the kind names a top-level type declaration.
// Core types get the condensed, title-weighted treatment when their content
// is prepared for full-text indexing.
func (k Kind) IsCoreType() bool {
	switch k {
	case KindProtocol, KindClass, KindStruct, KindEnum, KindTypeAlias:
		return true
	}
	return false
}

// IsMember reports whether the kind names a member of a type. Members carry
// near-duplicate boilerplate from their parent page, so only their title,
// abstract and declaration are indexed.
func (k Kind) IsMember() bool {
	switch k {
	case KindMethod, KindProperty, KindOperator, KindMacro:
		return true
	}
	return false
}

// IsNarrative reports whether the document is prose rather than a symbol
// page. Narrative documents are indexed verbatim.
func (k Kind) IsNarrative() bool {
	switch k {
	case KindArticle, KindTutorial, KindCollection, KindUnknown:
		return true
	}
	return false
}
