package macro

// Token is a preprocessing token of text outside the engine.
type Token struct {
	Kind TokenKind
	Text string
	// Space is set when whitespace or a comment preceded the token.
	Space bool
}

// Tokenize splits text into preprocessing tokens. Whitespace and comments
// are dropped and recorded in the Space flag of the following token.
func Tokenize(text string) []Token {
	toks := lexString(text)
	out := make([]Token, len(toks))
	for i, t := range toks {
		out[i] = Token{Kind: t.kind, Text: t.text, Space: t.space}
	}
	return out
}
