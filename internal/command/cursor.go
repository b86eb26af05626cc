package command

// Cursor walks a token list. Commands with optional arguments peek and only
// consume tokens of the shape they accept.
type Cursor struct {
	tokens []string
	pos    int
}

func NewCursor(tokens []string) *Cursor {
	return &Cursor{tokens: tokens}
}

func (c *Cursor) Done() bool {
	return c.pos >= len(c.tokens)
}

func (c *Cursor) Peek() (string, bool) {
	if c.Done() {
		return "", false
	}
	return c.tokens[c.pos], true
}

func (c *Cursor) Next() (string, bool) {
	tok, ok := c.Peek()
	if ok {
		c.pos++
	}
	return tok, ok
}

// ConsumeIf advances past the next token only when accept returns true.
func (c *Cursor) ConsumeIf(accept func(string) bool) (string, bool) {
	tok, ok := c.Peek()
	if !ok || !accept(tok) {
		return "", false
	}
	c.pos++
	return tok, true
}

// Position is the index of the next unread token.
func (c *Cursor) Position() int {
	return c.pos
}
