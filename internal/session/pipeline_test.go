package session

import "testing"

func TestParseSimpleCommand(t *testing.T) {
	cl, err := ParseCommandList("echo hello world")
	if err != nil {
		t.Fatal(err)
	}
	if len(cl.Pipelines) != 1 || len(cl.Pipelines[0].Stages) != 1 {
		t.Fatalf("got %+v", cl.Pipelines)
	}
	stage := cl.Pipelines[0].Stages[0]
	if len(stage.Argv) != 3 || stage.Argv[0] != "echo" || stage.Argv[2] != "world" {
		t.Fatalf("argv = %v", stage.Argv)
	}
}

func TestParsePipeline(t *testing.T) {
	cl, err := ParseCommandList("cat file | grep foo | wc -l")
	if err != nil {
		t.Fatal(err)
	}
	if len(cl.Pipelines) != 1 {
		t.Fatalf("expected one pipeline, got %d", len(cl.Pipelines))
	}
	if len(cl.Pipelines[0].Stages) != 3 {
		t.Fatalf("expected 3 stages, got %d", len(cl.Pipelines[0].Stages))
	}
}

// TestParseAndOrOperators ensures `&&` and `||` split a command into
// separate pipelines joined by ReactionAnd and ReactionOr.
func TestParseAndOrOperators(t *testing.T) {
	cl, err := ParseCommandList("false && echo yes || echo no")
	if err != nil {
		t.Fatal(err)
	}
	if len(cl.Pipelines) != 3 {
		t.Fatalf("expected 3 pipelines, got %d", len(cl.Pipelines))
	}
	if cl.Reactions[0] != ReactionAnd {
		t.Fatalf("reaction[0] = %v, want ReactionAnd", cl.Reactions[0])
	}
	if cl.Reactions[1] != ReactionOr {
		t.Fatalf("reaction[1] = %v, want ReactionOr", cl.Reactions[1])
	}
}

func TestParseBackground(t *testing.T) {
	cl, err := ParseCommandList("sleep 5 &")
	if err != nil {
		t.Fatal(err)
	}
	if len(cl.Pipelines) != 1 || !cl.IsBackground(0) {
		t.Fatalf("expected a single background pipeline, got %+v", cl.Reactions)
	}
}

func TestParseQuotedAmpersandIsNotAnOperator(t *testing.T) {
	cl, err := ParseCommandList(`echo "a && b"`)
	if err != nil {
		t.Fatal(err)
	}
	if len(cl.Pipelines) != 1 || len(cl.Pipelines[0].Stages) != 1 {
		t.Fatalf("got %+v", cl.Pipelines)
	}
	argv := cl.Pipelines[0].Stages[0].Argv
	if len(argv) != 2 || argv[1] != "a && b" {
		t.Fatalf("argv = %v, want [echo, \"a && b\"]", argv)
	}
}

func TestBuildSimpleCommandAssignments(t *testing.T) {
	cl, err := ParseCommandList("FOO=bar BAZ=1 env")
	if err != nil {
		t.Fatal(err)
	}
	sc := cl.Pipelines[0].Stages[0]
	if len(sc.Assignments) != 2 || sc.Assignments[0].Name != "FOO" || sc.Assignments[0].Value != "bar" {
		t.Fatalf("assignments = %+v", sc.Assignments)
	}
	if len(sc.Argv) != 1 || sc.Argv[0] != "env" {
		t.Fatalf("argv = %v", sc.Argv)
	}
}
