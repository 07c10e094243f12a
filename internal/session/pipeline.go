// Package session implements the Session & Job multiplexer of spec.md
// §4.4: it owns the interaction store, spawns child processes with
// pseudo-terminal endpoints, and runs per-child I/O goroutines that push
// bytes into the parser of the right interaction's screen.
package session

import (
	"strings"

	"github.com/google/shlex"
)

// Reaction is how a Pipeline's exit status feeds into the next one in a
// CommandList, mirroring the CommandReaction shape of the original
// interpreter's AST (Normal/Background/And/Or).
type Reaction uint8

const (
	ReactionNormal Reaction = iota
	ReactionBackground
	ReactionAnd
	ReactionOr
)

// SimpleCommand is one pipeline stage: a program and its arguments, plus
// any leading `NAME=value` assignments (spec.md §4.4 builtins).
type SimpleCommand struct {
	Assignments []Assignment
	Argv        []string
}

// Assignment is a `NAME=value` prefix on a simple command or a bare
// assignment statement.
type Assignment struct {
	Name  string
	Value string
}

// Pipeline is one or more SimpleCommands joined by `|`.
type Pipeline struct {
	Stages []SimpleCommand
}

// CommandList is a sequence of Pipelines with the reaction that connects
// each one to the next: `;`, `&&`, `||`, or a trailing `&`.
type CommandList struct {
	Pipelines []Pipeline
	Reactions []Reaction // len == len(Pipelines), Reactions[i] joins Pipelines[i] to Pipelines[i+1]; the last entry describes Pipelines[len-1]'s own background/foreground status
}

// ParseCommandList tokenizes and parses BiTE's restricted command grammar:
// simple commands, pipelines, and `;`/`&&`/`||`/`&` connectors. Full POSIX
// shell grammar (subshells, here-docs, globbing) is explicitly out of
// scope per spec.md §1.
func ParseCommandList(text string) (*CommandList, error) {
	tokens, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	cl := &CommandList{}
	var stages []SimpleCommand
	var cur []string
	flushStage := func() {
		if len(cur) == 0 {
			return
		}
		stages = append(stages, buildSimpleCommand(cur))
		cur = nil
	}
	flushPipeline := func(reaction Reaction) {
		flushStage()
		if len(stages) > 0 {
			cl.Pipelines = append(cl.Pipelines, Pipeline{Stages: stages})
			cl.Reactions = append(cl.Reactions, reaction)
		}
		stages = nil
	}

	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		switch t {
		case "|":
			flushStage()
		case ";":
			flushPipeline(ReactionNormal)
		case "&&":
			flushPipeline(ReactionAnd)
		case "||":
			flushPipeline(ReactionOr)
		case "&":
			flushPipeline(ReactionBackground)
		default:
			cur = append(cur, t)
		}
	}
	flushPipeline(ReactionNormal)
	return cl, nil
}

// tokenize scans for the unquoted operator tokens (`;`, `|`, `||`, `&`,
// `&&`) and leaves word-splitting and quote/escape handling within each
// run of plain text to shlex, the same word tokenizer the retrieval pack
// uses ahead of its own command grammars.
func tokenize(text string) ([]string, error) {
	var tokens []string
	var buf strings.Builder
	inSingle, inDouble := false, false
	runes := []rune(text)

	flush := func() error {
		if buf.Len() == 0 {
			return nil
		}
		words, err := shlex.Split(buf.String())
		if err != nil {
			return err
		}
		tokens = append(tokens, words...)
		buf.Reset()
		return nil
	}

	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '\'' && !inDouble:
			inSingle = !inSingle
			buf.WriteRune(c)
		case c == '"' && !inSingle:
			inDouble = !inDouble
			buf.WriteRune(c)
		case inSingle || inDouble:
			buf.WriteRune(c)
		case c == '&' && i+1 < len(runes) && runes[i+1] == '&':
			if err := flush(); err != nil {
				return nil, err
			}
			tokens = append(tokens, "&&")
			i++
		case c == '|' && i+1 < len(runes) && runes[i+1] == '|':
			if err := flush(); err != nil {
				return nil, err
			}
			tokens = append(tokens, "||")
			i++
		case c == ';' || c == '|' || c == '&':
			if err := flush(); err != nil {
				return nil, err
			}
			tokens = append(tokens, string(c))
		default:
			buf.WriteRune(c)
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return tokens, nil
}

func buildSimpleCommand(words []string) SimpleCommand {
	sc := SimpleCommand{}
	i := 0
	for ; i < len(words); i++ {
		name, value, ok := splitAssignment(words[i])
		if !ok {
			break
		}
		sc.Assignments = append(sc.Assignments, Assignment{Name: name, Value: value})
	}
	sc.Argv = words[i:]
	return sc
}

func splitAssignment(word string) (name, value string, ok bool) {
	eq := strings.IndexByte(word, '=')
	if eq <= 0 {
		return "", "", false
	}
	name = word[:eq]
	for _, r := range name {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return "", "", false
		}
	}
	return name, word[eq+1:], true
}

// IsBackground reports whether a pipeline at index i in the list was
// terminated by `&`.
func (cl *CommandList) IsBackground(i int) bool {
	return i < len(cl.Reactions) && cl.Reactions[i] == ReactionBackground
}
