// blocks/blocks.go
// Package blocks manages menu blocks through the admin API and provides the local
// filtering, ordering and tree helpers used to present them.
package blocks

// Block is a menu block as returned by the backend. Optional fields are nil when absent.
type Block struct {
	ID           string   `json:"id"`
	ParentID     *string  `json:"parent_id,omitempty"`
	Title        string   `json:"title"`
	Description  *string  `json:"description,omitempty"`
	TextContent  *string  `json:"text_content,omitempty"`
	Link         *string  `json:"link,omitempty"`
	PrevID       *string  `json:"prev_id,omitempty"`
	NextID       *string  `json:"next_id,omitempty"`
	CreatedAt    string   `json:"created_at,omitempty"`
	UpdatedAt    string   `json:"updated_at,omitempty"`
	IsSearchable *bool    `json:"is_searchable,omitempty"`
	Content      *string  `json:"content,omitempty"`
	OrderIndex   *int     `json:"order_index,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// BlockCreate is the payload for creating a block.
type BlockCreate struct {
	ParentID     *string  `json:"parent_id,omitempty"`
	Title        string   `json:"title"`
	Description  *string  `json:"description,omitempty"`
	TextContent  *string  `json:"text_content,omitempty"`
	Link         *string  `json:"link,omitempty"`
	PrevID       *string  `json:"prev_id,omitempty"`
	NextID       *string  `json:"next_id,omitempty"`
	IsSearchable *bool    `json:"is_searchable,omitempty"`
	Content      *string  `json:"content,omitempty"`
	OrderIndex   *int     `json:"order_index,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// BlockUpdate is a partial update; only non-nil fields are sent.
type BlockUpdate struct {
	ParentID     *string  `json:"parent_id,omitempty"`
	Title        *string  `json:"title,omitempty"`
	Description  *string  `json:"description,omitempty"`
	TextContent  *string  `json:"text_content,omitempty"`
	Link         *string  `json:"link,omitempty"`
	PrevID       *string  `json:"prev_id,omitempty"`
	NextID       *string  `json:"next_id,omitempty"`
	IsSearchable *bool    `json:"is_searchable,omitempty"`
	Content      *string  `json:"content,omitempty"`
	OrderIndex   *int     `json:"order_index,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// Parent returns the parent id, "" for a top-level block.
func (b Block) Parent() string {
	if b.ParentID == nil {
		return ""
	}
	return *b.ParentID
}

// Searchable reports whether the block is included in bot search.
func (b Block) Searchable() bool {
	return b.IsSearchable != nil && *b.IsSearchable
}

// Order returns the order index, or -1 when unset.
func (b Block) Order() int {
	if b.OrderIndex == nil {
		return -1
	}
	return *b.OrderIndex
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Ptr returns a pointer to v, for filling optional fields.
func Ptr[T any](v T) *T {
	return &v
}
