package program

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/anmitsu/go-shlex"
	"github.com/nao1215/oursh"
)

var (
	// ErrUnterminatedQuote is returned for a quote left open at end of input.
	ErrUnterminatedQuote = errors.New("unterminated quoted string")
	// ErrUnexpectedEOF is returned when input ends after | && or ||.
	ErrUnexpectedEOF = errors.New("syntax error: unexpected end of input")
)

// segment is the raw text of one simple command and the operator that
// ended it: ";", "\n", "|", "&", "&&", "||", or "" at end of input.
type segment struct {
	text string
	op   string
}

// Parse parses src with grammar g. Errors are *oursh.Error values of kind
// oursh.KindParse.
func Parse(g Grammar, src []byte) (Program, error) {
	var (
		segs []segment
		err  error
	)
	split := func(s string) ([]string, error) { return strings.Fields(s), nil }
	switch g {
	case Primary:
		segs, err = scanPrimary(string(src))
		split = func(s string) ([]string, error) { return shlex.Split(s, true) }
	case Alternate:
		segs = scanAlternate(string(src))
	default:
		err = fmt.Errorf("unknown grammar %v", g)
	}
	if err != nil {
		return Program{}, oursh.NewError(oursh.KindParse, "parse", err)
	}
	prog, err := build(segs, split)
	if err != nil {
		return Program{}, oursh.NewError(oursh.KindParse, "parse", err)
	}
	return prog, nil
}

// scanPrimary cuts src at unquoted operators. Quotes and backslashes are
// kept in the segment text for shlex to interpret; comments are dropped.
func scanPrimary(src string) ([]segment, error) {
	var (
		segs      []segment
		cur       strings.Builder
		quote     rune
		wordStart = true
	)
	runes := []rune(src)
	cut := func(op string) {
		segs = append(segs, segment{text: cur.String(), op: op})
		cur.Reset()
		wordStart = true
	}
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if quote != 0 {
			cur.WriteRune(r)
			switch {
			case r == quote:
				quote = 0
			case quote == '"' && r == '\\' && i+1 < len(runes):
				i++
				cur.WriteRune(runes[i])
			}
			continue
		}
		switch r {
		case '\'', '"':
			quote = r
			cur.WriteRune(r)
			wordStart = false
		case '\\':
			cur.WriteRune(r)
			if i+1 < len(runes) {
				i++
				cur.WriteRune(runes[i])
			}
			wordStart = false
		case '#':
			if !wordStart {
				cur.WriteRune(r)
				continue
			}
			for i+1 < len(runes) && runes[i+1] != '\n' {
				i++
			}
		case ';', '\n':
			cut(string(r))
		case '|', '&':
			op := string(r)
			if i+1 < len(runes) && runes[i+1] == r {
				op += string(r)
				i++
			}
			cut(op)
		default:
			cur.WriteRune(r)
			wordStart = unicode.IsSpace(r)
		}
	}
	if quote != 0 {
		return nil, ErrUnterminatedQuote
	}
	cut("")
	return segs, nil
}

// scanAlternate splits src into lines and blank separated words. A word
// that is exactly | or & is an operator.
func scanAlternate(src string) []segment {
	var segs []segment
	for _, line := range strings.Split(src, "\n") {
		var words []string
		for _, w := range strings.Fields(line) {
			if w == "|" || w == "&" {
				segs = append(segs, segment{text: strings.Join(words, " "), op: w})
				words = nil
				continue
			}
			words = append(words, w)
		}
		segs = append(segs, segment{text: strings.Join(words, " "), op: "\n"})
	}
	segs[len(segs)-1].op = ""
	return segs
}

func build(segs []segment, split func(string) ([]string, error)) (Program, error) {
	var (
		prog  Program
		cur   Pipeline
		texts []string
		join  = OpSeq
		// a | && or || is waiting for its right hand side
		pending bool
	)
	for _, seg := range segs {
		args, err := split(seg.text)
		if err != nil {
			return Program{}, err
		}
		if len(args) == 0 {
			switch {
			case seg.op == "\n":
				continue
			case seg.op == "" && pending:
				return Program{}, ErrUnexpectedEOF
			case seg.op == "":
				continue
			default:
				return Program{}, fmt.Errorf("syntax error near unexpected token `%s'", seg.op)
			}
		}
		cur.Commands = append(cur.Commands, Command{Args: args})
		texts = append(texts, strings.TrimSpace(seg.text))
		if seg.op == "|" {
			pending = true
			continue
		}
		cur.Text = strings.Join(texts, " | ")
		cur.Op = join
		cur.Background = seg.op == "&"
		prog.Pipelines = append(prog.Pipelines, cur)
		cur, texts = Pipeline{}, nil

		pending = false
		switch seg.op {
		case "&&":
			join, pending = OpAnd, true
		case "||":
			join, pending = OpOr, true
		default:
			join = OpSeq
		}
	}
	return prog, nil
}
