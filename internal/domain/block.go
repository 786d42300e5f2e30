package domain

// BlockType is the closed set of block kinds the editor understands.
type BlockType string

const (
	BlockTypeParagraph    BlockType = "paragraph"
	BlockTypeHeading1     BlockType = "heading1"
	BlockTypeHeading2     BlockType = "heading2"
	BlockTypeHeading3     BlockType = "heading3"
	BlockTypeQuote        BlockType = "quote"
	BlockTypeCode         BlockType = "code"
	BlockTypeBulletList   BlockType = "bulletList"
	BlockTypeNumberedList BlockType = "numberedList"
)

// BlockTypes lists every block type in slash-menu order.
var BlockTypes = []BlockType{
	BlockTypeParagraph,
	BlockTypeHeading1,
	BlockTypeHeading2,
	BlockTypeHeading3,
	BlockTypeQuote,
	BlockTypeCode,
	BlockTypeBulletList,
	BlockTypeNumberedList,
}

// Block is one typed, positioned unit of a description.
// The JSON shape is the persisted wire format.
type Block struct {
	ID       string    `json:"id"`
	Type     BlockType `json:"type"`
	Content  string    `json:"content"`
	Position int       `json:"position"`
}

// ParseBlockType maps a wire value onto the closed set.
func ParseBlockType(s string) (BlockType, bool) {
	t := BlockType(s)
	return t, t.Valid()
}

// Valid reports whether t is one of the known block types.
func (t BlockType) Valid() bool {
	switch t {
	case BlockTypeParagraph, BlockTypeHeading1, BlockTypeHeading2, BlockTypeHeading3,
		BlockTypeQuote, BlockTypeCode, BlockTypeBulletList, BlockTypeNumberedList:
		return true
	}
	return false
}

// Label is the slash-menu title.
func (t BlockType) Label() string {
	switch t {
	case BlockTypeHeading1:
		return "Heading 1"
	case BlockTypeHeading2:
		return "Heading 2"
	case BlockTypeHeading3:
		return "Heading 3"
	case BlockTypeQuote:
		return "Quote"
	case BlockTypeCode:
		return "Code"
	case BlockTypeBulletList:
		return "Bulleted list"
	case BlockTypeNumberedList:
		return "Numbered list"
	default:
		return "Text"
	}
}

// Description is the slash-menu hint line.
func (t BlockType) Description() string {
	switch t {
	case BlockTypeHeading1:
		return "Big section heading."
	case BlockTypeHeading2:
		return "Medium section heading."
	case BlockTypeHeading3:
		return "Small section heading."
	case BlockTypeQuote:
		return "Capture a quote."
	case BlockTypeCode:
		return "Capture a code snippet."
	case BlockTypeBulletList:
		return "Create a simple bulleted list."
	case BlockTypeNumberedList:
		return "Create a list with numbering."
	default:
		return "Just start writing with plain text."
	}
}

// Placeholder is shown while a block of type t is empty.
func (t BlockType) Placeholder() string {
	switch t {
	case BlockTypeHeading1, BlockTypeHeading2, BlockTypeHeading3:
		return t.Label()
	case BlockTypeQuote:
		return "Empty quote"
	case BlockTypeCode:
		return "Enter code..."
	case BlockTypeBulletList, BlockTypeNumberedList:
		return "List"
	default:
		return "Type '/' for commands"
	}
}

// HeadingLevel returns 1-3 for heading types and 0 otherwise.
func (t BlockType) HeadingLevel() int {
	switch t {
	case BlockTypeHeading1:
		return 1
	case BlockTypeHeading2:
		return 2
	case BlockTypeHeading3:
		return 3
	}
	return 0
}

// HeadingType returns the heading type for a markdown level, clamped to 1-3.
func HeadingType(level int) BlockType {
	switch {
	case level <= 1:
		return BlockTypeHeading1
	case level == 2:
		return BlockTypeHeading2
	default:
		return BlockTypeHeading3
	}
}
