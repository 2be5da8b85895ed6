// Package names classifies artifact name strings per §3 of the spec:
// Job Document, Project Document, Reserved, or Private.
package names

import "strings"

type Kind int

const (
	KindJobDocument Kind = iota
	KindProjectDocument
	KindReserved
	KindPrivate
)

func (k Kind) String() string {
	switch k {
	case KindJobDocument:
		return "job-document"
	case KindProjectDocument:
		return "project-document"
	case KindReserved:
		return "reserved"
	case KindPrivate:
		return "private"
	default:
		return "unknown"
	}
}

// DefaultVersion is substituted for a Project Document reference that
// omits "@Version".
const DefaultVersion = "stable"

// Classify determines the Kind of a raw artifact name. Reserved and
// Private are checked first since they are always rejected regardless of
// what else the name looks like.
func Classify(name string) Kind {
	if strings.Contains(name, "__") {
		return KindReserved
	}
	if strings.HasPrefix(name, "_") {
		return KindPrivate
	}
	if strings.ContainsAny(name, ":#") {
		return KindProjectDocument
	}
	return KindJobDocument
}

// ProjectDocument is the parsed form of a "Name:ResourceID[@Version]"
// reference.
type ProjectDocument struct {
	Name       string
	ResourceID string
	Version    string
}

// ParseProjectDocument splits a Project Document name into its parts,
// defaulting Version to DefaultVersion when omitted. Callers must first
// confirm Classify(name) == KindProjectDocument.
func ParseProjectDocument(name string) (ProjectDocument, bool) {
	colon := strings.IndexByte(name, ':')
	if colon < 0 {
		return ProjectDocument{}, false
	}
	rest := name[colon+1:]
	resID, version := rest, DefaultVersion
	if at := strings.IndexByte(rest, '@'); at >= 0 {
		resID = rest[:at]
		version = rest[at+1:]
	}
	if resID == "" {
		return ProjectDocument{}, false
	}
	return ProjectDocument{
		Name:       name[:colon],
		ResourceID: resID,
		Version:    version,
	}, true
}

// External renders a ProjectDocument back to its canonical wire form,
// always with an explicit version (§6: "Name:ResID@Ver").
func (p ProjectDocument) External() string {
	return p.Name + ":" + p.ResourceID + "@" + p.Version
}

// SplitInputModifier separates a wiring input token like "Report@history"
// into its base name and modifier ("history", "prev", or "").
//
// Project Document references also use "@" for their version, so this is
// only meaningful once the caller has confirmed the base is a Job
// Document; the resolver is responsible for calling Classify first.
func SplitInputModifier(token string) (base, modifier string) {
	at := strings.LastIndexByte(token, '@')
	if at < 0 {
		return token, ""
	}
	return token[:at], token[at+1:]
}
