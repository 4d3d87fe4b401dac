// Package enclosing locates the smallest balanced-delimiter block
// containing a token occurrence. The search is purely lexical: tokens
// inside string literals or comments are treated identically to code.
package enclosing

import "strings"

// Pair is a balanced delimiter pair. Open and Close must differ.
type Pair struct {
	Open  byte
	Close byte
}

// Braces is the default pair.
var Braces = Pair{Open: '{', Close: '}'}

// Parens and Brackets cover call and subscript contexts.
var (
	Parens   = Pair{Open: '(', Close: ')'}
	Brackets = Pair{Open: '[', Close: ']'}
)

// Block is an inclusive span of content, delimiters included.
type Block struct {
	Start int
	End   int
	Text  string
}

// Extract returns the innermost brace-delimited block containing the
// first occurrence of token, or absence if the token is missing or no
// enclosing block exists. Absence is a legitimate answer, not an error.
func Extract(content, token string) (Block, bool) {
	return ExtractPair(content, token, Braces)
}

// ExtractPair generalizes Extract to any balanced delimiter pair.
//
// One left-to-right scan keeps a stack of opening offsets. Each closing
// delimiter pops its opening offset; a popped span containing the token
// offset replaces the current best only when strictly smaller, so the
// innermost block wins in a single pass and an equal-length candidate
// found earlier is kept. Unmatched closing delimiters are ignored.
func ExtractPair(content, token string, pair Pair) (Block, bool) {
	tokenAt := strings.Index(content, token)
	if tokenAt < 0 {
		return Block{}, false
	}

	var stack []int
	bestLen := -1
	bestStart, bestEnd := 0, 0

	for i := 0; i < len(content); i++ {
		switch content[i] {
		case pair.Open:
			stack = append(stack, i)
		case pair.Close:
			if len(stack) == 0 {
				continue
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if open > tokenAt || tokenAt > i {
				continue
			}
			if length := i - open + 1; bestLen < 0 || length < bestLen {
				bestLen = length
				bestStart, bestEnd = open, i
			}
		}
	}

	if bestLen < 0 {
		return Block{}, false
	}
	return Block{
		Start: bestStart,
		End:   bestEnd,
		Text:  content[bestStart : bestEnd+1],
	}, true
}
