// Package router classifies resource locators into collection and item
// matches. A Table is built once and passed to the components that need it;
// there is no package-level registration.
package router

import (
	"strconv"
	"strings"

	"github.com/mesh-intelligence/decors/pkg/types"
)

// Kind is the shape of a matched locator.
type Kind int

const (
	// Collection addresses zero or more records, optionally filtered.
	Collection Kind = iota + 1
	// Item addresses exactly one record by its embedded numeric id.
	Item
)

func (k Kind) String() string {
	switch k {
	case Collection:
		return "collection"
	case Item:
		return "item"
	default:
		return "unknown"
	}
}

// idWildcard in a pattern matches one non-negative decimal segment.
const idWildcard = "#"

// Table maps locator paths under one authority to match kinds.
type Table struct {
	authority string
	routes    []route
}

type route struct {
	segments []string
	kind     Kind
}

// New returns an empty table for authority.
func New(authority string) *Table {
	return &Table{authority: authority}
}

// Default returns the decors table: "decors" is the collection and
// "decors/#" an item.
func Default() *Table {
	return New(types.Authority).
		Add(types.PathDecors, Collection).
		Add(types.PathDecors+"/"+idWildcard, Item)
}

// Add registers pattern with kind and returns t. A pattern is a
// slash-separated path; "#" matches a numeric id segment. Item patterns
// must end in "#".
func (t *Table) Add(pattern string, kind Kind) *Table {
	t.routes = append(t.routes, route{segments: splitPath(pattern), kind: kind})
	return t
}

// Authority returns the authority the table serves.
func (t *Table) Authority() string {
	return t.authority
}

// Match is the result of classifying a locator.
type Match struct {
	Kind Kind
	// ID is the embedded id for Item matches and zero otherwise.
	ID int64
	// Path is the collection path, without the id segment.
	Path string
	// Locator is the canonical form: scheme://authority/path[/id].
	Locator string

	authority string
}

// Match classifies locator. It accepts "content://<authority>/<path>" and
// "<authority>/<path>", with or without a trailing slash, and fails with
// *types.UnrecognizedResourceError for anything else.
func (t *Table) Match(locator string) (Match, error) {
	authority, segments, ok := parseLocator(locator)
	if !ok || authority != t.authority {
		return Match{}, &types.UnrecognizedResourceError{Locator: locator}
	}

	for _, r := range t.routes {
		id, ok := r.match(segments)
		if !ok {
			continue
		}
		m := Match{Kind: r.kind, ID: id, authority: t.authority}
		if r.kind == Item {
			m.Path = strings.Join(segments[:len(segments)-1], "/")
		} else {
			m.Path = strings.Join(segments, "/")
		}
		m.Locator = m.canonical()
		return m, nil
	}
	return Match{}, &types.UnrecognizedResourceError{Locator: locator}
}

// Type returns the collection or item type tag for locator.
func (t *Table) Type(locator string) (string, error) {
	m, err := t.Match(locator)
	if err != nil {
		return "", err
	}
	return m.Type(), nil
}

// ItemLocator returns the canonical locator for id under path.
func (t *Table) ItemLocator(path string, id int64) string {
	return types.Scheme + "://" + t.authority + "/" + path + "/" + strconv.FormatInt(id, 10)
}

// Scope returns the selection an operation on m must use. An item match
// always selects its own id; any caller selection is discarded.
func (m Match) Scope(sel types.Selection) types.Selection {
	if m.Kind != Item {
		return sel
	}
	return types.Selection{
		Where: types.ColumnID + " = ?",
		Args:  []any{m.ID},
	}
}

// Type returns the type tag for the match.
func (m Match) Type() string {
	prefix := types.CollectionTypePrefix
	if m.Kind == Item {
		prefix = types.ItemTypePrefix
	}
	return prefix + "/" + m.authority + "/" + m.Path
}

// CollectionLocator returns the canonical locator of the collection m
// belongs to. For a collection match this is m.Locator.
func (m Match) CollectionLocator() string {
	return types.Scheme + "://" + m.authority + "/" + m.Path
}

func (m Match) canonical() string {
	if m.Kind == Item {
		return m.CollectionLocator() + "/" + strconv.FormatInt(m.ID, 10)
	}
	return m.CollectionLocator()
}

func (r route) match(segments []string) (int64, bool) {
	if len(segments) != len(r.segments) {
		return 0, false
	}
	var id int64
	for i, want := range r.segments {
		got := segments[i]
		if want == idWildcard {
			n, ok := parseID(got)
			if !ok {
				return 0, false
			}
			id = n
			continue
		}
		if got != want {
			return 0, false
		}
	}
	return id, true
}

// parseLocator splits locator into authority and path segments.
func parseLocator(locator string) (string, []string, bool) {
	rest := strings.TrimSpace(locator)
	if i := strings.Index(rest, "://"); i >= 0 {
		if rest[:i] != types.Scheme {
			return "", nil, false
		}
		rest = rest[i+3:]
	}
	if strings.ContainsAny(rest, "?#") {
		return "", nil, false
	}
	rest = strings.TrimSuffix(rest, "/")
	authority, path, found := strings.Cut(rest, "/")
	if !found || authority == "" {
		return "", nil, false
	}
	segments := splitPath(path)
	for _, s := range segments {
		if s == "" {
			return "", nil, false
		}
	}
	return authority, segments, true
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// parseID accepts only decimal digits, so signs and spaces never match.
func parseID(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
