// Package urn builds and parses persistent identifiers for Vietnamese legal
// documents and their components, following the lex URN scheme:
//
//	urn:lex:vn:{authority}:{type}:{date};{number}[@version][#component]
//
// Missing inputs render as the literal "null" placeholder, which keeps the
// identifier syntactically valid; semantic validation is a downstream concern.
package urn

import (
	"fmt"
	"regexp"
	"strings"

	pkgerrors "lexgraph/backend/pkg/errors"
)

// Namespace is the fixed prefix of every generated identifier: the URN scheme
// plus the Vietnamese jurisdiction literal.
const Namespace = "urn:lex:vn"

var (
	nonAlnum     = regexp.MustCompile(`[^a-z0-9]`)
	nonAlnumDash = regexp.MustCompile(`[^a-z0-9-]`)
	multiDash    = regexp.MustCompile(`-{2,}`)
	digits       = regexp.MustCompile(`\d+`)
)

var componentTypeTokens = map[string]string{
	"PHAN":     "phan",
	"CHUONG":   "chuong",
	"MUC":      "muc",
	"DIEU":     "dieu",
	"KHOAN":    "khoan",
	"DIEM":     "diem",
	"TIEU_MUC": "tieumuc",
}

// Generator builds document and component identifiers. It is stateless; the
// zero value is ready to use.
type Generator struct{}

// NewGenerator creates a new identifier generator
func NewGenerator() *Generator {
	return &Generator{}
}

// DocumentURN builds the persistent identifier for a document from its
// classification metadata. Distinct (type, authority, date, number) tuples map
// to distinct identifiers as long as the inputs differ after normalization.
func (g *Generator) DocumentURN(docType, authority, date, number string) string {
	return fmt.Sprintf("%s:%s:%s:%s;%s",
		Namespace,
		normalizeToken(authority),
		normalizeToken(docType),
		orNull(date),
		cleanNumber(number),
	)
}

// ComponentURN extends a document identifier with a fragment naming one
// component: the lower-cased type token concatenated with the sanitized
// ordinal ("#dieu1", "#diema"). Duplicate sibling ordinals collide; callers
// accept that as a property of the source document.
func (g *Generator) ComponentURN(documentURN, componentType, ordinal string) string {
	token, ok := componentTypeTokens[componentType]
	if !ok {
		token = nonAlnum.ReplaceAllString(strings.ToLower(componentType), "")
	}
	id := nonAlnum.ReplaceAllString(strings.ToLower(Transliterate(ordinal)), "")
	return fmt.Sprintf("%s#%s%s", documentURN, token, id)
}

// VersionURN appends a temporal-version qualifier to a document or component
// identifier, replacing any existing one.
func (g *Generator) VersionURN(baseURN, effectiveDate string) string {
	if at := strings.Index(baseURN, "@"); at >= 0 {
		baseURN = baseURN[:at]
	}
	return baseURN + "@" + effectiveDate
}

// WorkID builds the human-readable work identifier used by the query layer,
// e.g. "LUAT-2020-58" or "HIENPHAP-2013".
func (g *Generator) WorkID(docType, date, number string) string {
	typePart := strings.ReplaceAll(docType, "_", "")
	year := "0000"
	if len(date) >= 4 {
		year = date[:4]
	}
	if num := digits.FindString(number); num != "" {
		return fmt.Sprintf("%s-%s-%s", typePart, year, num)
	}
	return fmt.Sprintf("%s-%s", typePart, year)
}

// ReferenceURN derives a placeholder identifier for a cross-reference whose
// target document has not been imported yet. The slug is deterministic for a
// given reference text.
func (g *Generator) ReferenceURN(refText string) string {
	slug := strings.ToLower(Transliterate(refText))
	slug = nonAlnumDash.ReplaceAllString(strings.ReplaceAll(slug, " ", "-"), "")
	slug = strings.Trim(multiDash.ReplaceAllString(slug, "-"), "-")
	if len(slug) > 40 {
		slug = slug[:40]
	}
	if slug == "" {
		slug = "null"
	}
	return Namespace + ":ref:" + slug
}

// Parts holds the fields of a parsed identifier. Absent fields are empty.
type Parts struct {
	Namespace string `json:"namespace"`
	Authority string `json:"authority"`
	Type      string `json:"type"`
	Date      string `json:"date"`
	Number    string `json:"number"`
	Version   string `json:"version"`
	Component string `json:"component"`
}

// Parse splits an identifier back into its parts.
func (g *Generator) Parse(urn string) (*Parts, error) {
	if !strings.HasPrefix(urn, Namespace+":") {
		return nil, pkgerrors.NewURNInvalid(urn)
	}

	parts := &Parts{Namespace: Namespace}
	rest := strings.TrimPrefix(urn, Namespace+":")

	if i := strings.Index(rest, "#"); i >= 0 {
		rest, parts.Component = rest[:i], rest[i+1:]
	}
	if i := strings.Index(rest, "@"); i >= 0 {
		rest, parts.Version = rest[:i], rest[i+1:]
	}

	fields := strings.Split(rest, ":")
	if len(fields) != 3 {
		return nil, pkgerrors.NewURNInvalid(urn)
	}
	parts.Authority = fields[0]
	parts.Type = fields[1]
	if i := strings.Index(fields[2], ";"); i >= 0 {
		parts.Date, parts.Number = fields[2][:i], fields[2][i+1:]
	} else {
		parts.Date = fields[2]
	}

	return parts, nil
}

// normalizeToken lower-cases a classification token and strips separators:
// "CHINH_PHU" -> "chinhphu", "NGHI_DINH" -> "nghidinh".
func normalizeToken(token string) string {
	cleaned := nonAlnum.ReplaceAllString(strings.ToLower(Transliterate(token)), "")
	if cleaned == "" {
		return "null"
	}
	return cleaned
}

// cleanNumber sanitizes a document number for identifier use: path separators
// and spaces become dashes, everything outside [a-z0-9-] is stripped.
// "30/2020/NĐ-CP" -> "30-2020-nd-cp".
func cleanNumber(number string) string {
	if number == "" {
		return "null"
	}
	cleaned := strings.ToLower(Transliterate(number))
	cleaned = strings.ReplaceAll(cleaned, "/", "-")
	cleaned = strings.ReplaceAll(cleaned, " ", "-")
	cleaned = nonAlnumDash.ReplaceAllString(cleaned, "")
	if cleaned == "" {
		return "null"
	}
	return cleaned
}

func orNull(s string) string {
	if s == "" {
		return "null"
	}
	return s
}
