package domain

// ResponseChunk is one item of a classified answer stream.
// It is either a TextContent or a CitationContent.
type ResponseChunk interface {
	// Text returns the displayable text the chunk was produced from.
	Text() string

	isResponseChunk()
}

// TextContent carries plain answer text.
type TextContent struct {
	Content string `json:"content"`
}

func (c TextContent) Text() string { return c.Content }

func (TextContent) isResponseChunk() {}

// CitationContent marks a reference to an axiom of the store.
type CitationContent struct {
	Axiom Axiom `json:"axiom"`
}

func (c CitationContent) Text() string { return c.Axiom.CitationMarker() }

func (CitationContent) isResponseChunk() {}
