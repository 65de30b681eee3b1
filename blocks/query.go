// blocks/query.go
package blocks

import (
	"sort"
	"strings"
	"time"
)

// DefaultPageSize is the number of blocks per page when Query.PageSize is unset.
const DefaultPageSize = 12

// RootParent as Query.ParentID selects top-level blocks.
const RootParent = "root"

// Sort keys accepted by Query.SortKey.
const (
	SortByTitle        = "title"
	SortByCreatedAt    = "created_at"
	SortByIsSearchable = "is_searchable"
)

// Query selects, orders and pages a block list.
type Query struct {
	Search         string // case-insensitive match on title, description, content and tags
	ParentID       string // "" for all; a block id keeps that block and its children; RootParent keeps top-level blocks
	OnlySearchable bool
	SortKey        string // defaults to SortByCreatedAt
	Ascending      bool
	Page           int // 1-based, clamped to the available pages
	PageSize       int
}

// Page is one page of a filtered block list.
type Page struct {
	Items      []Block
	Page       int
	TotalPages int
	Total      int
}

// Apply filters, sorts and paginates blocks. The input slice is not modified.
func Apply(blocks []Block, q Query) Page {
	filtered := Filter(blocks, q)
	Sort(filtered, q.SortKey, q.Ascending)

	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	totalPages := (len(filtered) + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * size
	end := start + size
	if end > len(filtered) {
		end = len(filtered)
	}

	return Page{
		Items:      filtered[start:end],
		Page:       page,
		TotalPages: totalPages,
		Total:      len(filtered),
	}
}

// Filter returns the blocks matching the search, searchable and parent criteria of q.
func Filter(blocks []Block, q Query) []Block {
	needle := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		if needle != "" && !matches(b, needle) {
			continue
		}
		if q.OnlySearchable && !b.Searchable() {
			continue
		}
		if q.ParentID != "" && !inParent(b, q.ParentID) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func matches(b Block, needle string) bool {
	if strings.Contains(strings.ToLower(b.Title), needle) ||
		strings.Contains(strings.ToLower(deref(b.Description)), needle) ||
		strings.Contains(strings.ToLower(deref(b.Content)), needle) {
		return true
	}
	for _, tag := range b.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func inParent(b Block, parentID string) bool {
	parent := b.Parent()
	if parent == "" {
		parent = RootParent
	}
	return parent == parentID || b.ID == parentID
}

// Sort orders blocks in place by key. Equal elements keep their relative order.
func Sort(blocks []Block, key string, ascending bool) {
	var compare func(a, b Block) int
	switch key {
	case SortByTitle:
		compare = func(a, b Block) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	case SortByIsSearchable:
		compare = func(a, b Block) int { return boolInt(a.Searchable()) - boolInt(b.Searchable()) }
	default:
		compare = func(a, b Block) int {
			at, bt := createdAt(a), createdAt(b)
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			}
			return 0
		}
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		cmp := compare(blocks[i], blocks[j])
		if ascending {
			return cmp < 0
		}
		return cmp > 0
	})
}

// createdAt parses the creation timestamp; missing or unparseable values sort as the zero time.
func createdAt(b Block) time.Time {
	if b.CreatedAt == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, b.CreatedAt); err == nil {
			return t
		}
	}
	return time.Time{}
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
