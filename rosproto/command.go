package rosproto

// Command is an ordered list of words sent as one outbound sentence.
// The first word is a command path (a resource selector such as
// "/queue/simple/print"); subsequent words are "=key=value" parameters or
// "?key=value" filters.
type Command struct {
	words []string
}

// NewCommand creates a Command for the given command path.
func NewCommand(path string) *Command {
	return &Command{words: []string{path}}
}

// Attr appends a "=key=value" parameter word and returns the Command for
// chaining.
func (c *Command) Attr(key, value string) *Command {
	c.words = append(c.words, "="+key+"="+value)
	return c
}

// Filter appends a "?key=value" filter word and returns the Command for
// chaining.
func (c *Command) Filter(key, value string) *Command {
	c.words = append(c.words, "?"+key+"="+value)
	return c
}

// Word appends a raw word and returns the Command for chaining.
func (c *Command) Word(word string) *Command {
	c.words = append(c.words, word)
	return c
}

// Words returns the command's words in send order.
func (c *Command) Words() []string {
	return c.words
}

// Path returns the command path (the first word).
func (c *Command) Path() string {
	return c.words[0]
}
