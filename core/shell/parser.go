package shell

// The command line grammar is a small subset of the one used by PowerShell:
//
//	pipeline := stage ( '|' stage )*
//	stage    := token+
//	token    := ( bare | "'" any* "'" | '"' any* '"' )+
//
// 1. The line is scanned left to right. Outside of quotes, '|' ends the
// current stage and whitespace ends the current token.
//
// 2. A single or double quote opens a span that runs to the next quote of
// the same kind. Inside the span whitespace and '|' are ordinary characters.
// The quotes themselves are removed from the token.
//
// 3. Nothing else is special: there are no escape sequences, variables or
// expansions.

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Token is a single word of a pipeline stage.
type Token struct {
	// Text is the token with quotes removed.
	Text string
	// Quoted is set if any part of the token came from a quoted span.
	Quoted bool
}

func (t Token) String() string {
	return t.Text
}

// Stage holds the tokens of one command in the pipeline, the first token is
// the command name.
type Stage []Token

// Texts returns the text of each token in the stage.
func (s Stage) Texts() []string {
	out := make([]string, len(s))
	for i, tok := range s {
		out[i] = tok.Text
	}
	return out
}

// SyntaxError is returned when a line can't be split into stages.
type SyntaxError struct {
	// Stage is the 1-based stage the error was found in.
	Stage int
	// Offset is the byte offset in the line where the problem was detected.
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("stage %d: %s", e.Stage, e.Msg)
}

// Tokenize splits a command line into pipeline stages.
func Tokenize(line string) ([]Stage, error) {
	var (
		stages  []Stage
		current Stage
		word    strings.Builder
		inWord  bool
		quoted  bool
		quote   rune
		quoteAt int
	)

	endWord := func() {
		if !inWord {
			return
		}
		current = append(current, Token{Text: word.String(), Quoted: quoted})
		word.Reset()
		inWord = false
		quoted = false
	}

	for offset := 0; offset < len(line); {
		r, size := utf8.DecodeRuneInString(line[offset:])
		// Bytes are copied from the line so invalid UTF-8 survives unchanged.
		raw := line[offset : offset+size]
		offset += size

		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			word.WriteString(raw)

		case r == '\'' || r == '"':
			quote = r
			quoteAt = offset - size
			inWord = true
			quoted = true

		case r == '|':
			endWord()
			if len(current) == 0 {
				return nil, &SyntaxError{Stage: len(stages) + 1, Offset: offset - size, Msg: "empty pipeline stage"}
			}
			stages = append(stages, current)
			current = nil

		case unicode.IsSpace(r):
			endWord()

		default:
			word.WriteString(raw)
			inWord = true
		}
	}

	if quote != 0 {
		return nil, &SyntaxError{
			Stage:  len(stages) + 1,
			Offset: quoteAt,
			Msg:    fmt.Sprintf("unterminated %c quote", quote),
		}
	}

	endWord()
	if len(current) == 0 {
		return nil, &SyntaxError{Stage: len(stages) + 1, Offset: len(line), Msg: "empty pipeline stage"}
	}
	stages = append(stages, current)

	return stages, nil
}

// JoinArgs reassembles an argument vector into a single line that Tokenize
// splits back into the same words.
//
// A vector with one element is taken to be a full command line. Elements
// that are exactly "|" are kept as stage separators.
func JoinArgs(argv []string) string {
	if len(argv) == 1 {
		return argv[0]
	}

	quotedArgs := make([]string, len(argv))
	for i, arg := range argv {
		if arg == "|" {
			quotedArgs[i] = arg
			continue
		}
		quotedArgs[i] = Quote(arg)
	}
	return strings.Join(quotedArgs, " ")
}

// Quote returns s in a form that tokenizes to a single token with text s.
func Quote(s string) string {
	if s == "" {
		return `""`
	}
	if !strings.ContainsFunc(s, needsQuote) {
		return s
	}

	switch {
	case !strings.ContainsRune(s, '"'):
		return `"` + s + `"`
	case !strings.ContainsRune(s, '\''):
		return `'` + s + `'`
	}

	// Both quote kinds are present, quote each run separately and rely on
	// adjacent spans being joined into one token.
	var out strings.Builder
	for len(s) > 0 {
		if s[0] == '"' {
			n := len(s) - len(strings.TrimLeft(s, `"`))
			out.WriteString(`'` + s[:n] + `'`)
			s = s[n:]
			continue
		}

		n := strings.IndexByte(s, '"')
		if n < 0 {
			n = len(s)
		}
		out.WriteString(`"` + s[:n] + `"`)
		s = s[n:]
	}
	return out.String()
}

func needsQuote(r rune) bool {
	return r == '|' || r == '\'' || r == '"' || unicode.IsSpace(r)
}
