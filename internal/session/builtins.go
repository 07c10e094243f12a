package session

import (
	"os"

	"bite/internal/interaction"
)

var builtinNames = map[string]bool{
	"cd":   true,
	"exit": true,
}

// isBuiltin reports whether a single-stage command should execute
// in-process without a Job, per spec.md §4.4: `cd`, variable assignment,
// `exit`.
func isBuiltin(sc SimpleCommand) bool {
	if len(sc.Argv) == 0 {
		return len(sc.Assignments) > 0 // bare assignment statement
	}
	return builtinNames[sc.Argv[0]]
}

// runBuiltin executes a builtin in-process and appends any output/errors
// directly to the Interaction's screens, since there is no Job to read
// from.
func (s *Session) runBuiltin(id int64, sc SimpleCommand) int {
	s.mu.Lock()
	for _, a := range sc.Assignments {
		s.env[a.Name] = a.Value
	}
	s.mu.Unlock()

	if len(sc.Argv) == 0 {
		return 0
	}

	switch sc.Argv[0] {
	case "cd":
		return s.builtinCd(id, sc.Argv[1:])
	case "exit":
		return s.builtinExit(sc.Argv[1:])
	}
	return 0
}

func (s *Session) builtinCd(id int64, args []string) int {
	dir := ""
	if len(args) > 0 {
		dir = args[0]
	} else {
		s.mu.Lock()
		dir = s.env["HOME"]
		s.mu.Unlock()
	}
	if err := os.Chdir(dir); err != nil {
		s.mu.Lock()
		s.store.Append(id, interaction.StreamError, []byte("cd: "+err.Error()+"\n"))
		s.mu.Unlock()
		return 1
	}
	if wd, err := os.Getwd(); err == nil {
		s.mu.Lock()
		s.cwd = wd
		s.mu.Unlock()
	}
	return 0
}

// builtinExit does not terminate the BiTE process itself; it only reports
// the requested code as the pipeline's result, since the interpreter is
// scoped to one Session and other Interactions may still be running.
func (s *Session) builtinExit(args []string) int {
	if len(args) == 0 {
		return 0
	}
	code := 0
	for _, c := range args[0] {
		if c < '0' || c > '9' {
			return 0
		}
		code = code*10 + int(c-'0')
	}
	return code
}
