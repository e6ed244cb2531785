package types

import "time"

// Platform identifies one of the OS families a documented API can require a
// minimum version of.
type Platform string

const (
	PlatformIOS      Platform = "iOS"
	PlatformMacOS    Platform = "macOS"
	PlatformWatchOS  Platform = "watchOS"
	PlatformTVOS     Platform = "tvOS"
	PlatformVisionOS Platform = "visionOS"
)

// AllPlatforms lists the platforms tracked as availability columns.
var AllPlatforms = []Platform{
	PlatformIOS, PlatformMacOS, PlatformWatchOS, PlatformTVOS, PlatformVisionOS,
}

// Document is the canonical in-memory representation of one documentation
// page, produced by an ingestion adapter and handed to the store. The store
// derives the full-text row, the structured-fields row and the metadata row
// from it.
type Document struct {
	URI       string // {source}://{path}, globally unique
	Source    Source
	Framework string // first path segment under the source root; empty for non-API sources
	Language  string // "swift", "objc", ...
	Title     string
	Content   string // raw search body before extraction policy
	Kind      Kind

	Abstract            string
	Declaration         string
	DeclarationLanguage string
	Overview            string
	Module              string
	Platforms           []string
	ConformsTo          []string
	InheritedBy         []string
	ConformingTypes     []string
	Attributes          []string // compiler/runtime annotations from the declaration

	// Availability maps a platform to the minimum version the documented
	// entity requires. Absent platforms mean availability is unknown.
	Availability       map[Platform]string
	AvailabilitySource string // provenance: "declaration", "proposal", ...

	FilePath    string // artifact path on the crawler filesystem
	ContentHash uint64
	LastIndexed time.Time
	WordCount   int
	Payload     []byte // full structured JSON, retained verbatim
}

// CodeExample is one code listing extracted from a document, ordered by its
// position within the page and independently searchable.
type CodeExample struct {
	ID       int64
	URI      string // owning document
	Code     string
	Language string
	Position int
}

// SampleCodeEntry is a downloadable sample project from the sample-code
// catalog. It is a top-level entity, not owned by any Document.
type SampleCodeEntry struct {
	URL          string // key
	Framework    string
	Title        string
	Description  string
	ArchiveName  string
	WebURL       string
	Availability map[Platform]string
}

// PackageRecord is one entry from the package registry. Name+Owner is unique.
type PackageRecord struct {
	ID          int64
	Name        string
	Owner       string
	RepoURL     string
	Stars       int
	Official    bool
	Description string
}

// FrameworkAlias maps the three equivalent spellings of a framework name to
// one canonical identifier. Identifier is the lowercase path-derived form and
// the lookup key; ImportName is the concatenated form used in import
// statements; DisplayName is the human-readable form.
type FrameworkAlias struct {
	Identifier  string
	ImportName  string
	DisplayName string
}
