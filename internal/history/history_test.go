package history

import "testing"

func TestAddEntryThenLoadRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	st, err := Open()
	if err != nil {
		t.Fatal(err)
	}
	st.AddEntry("echo one")
	st.AddEntry("echo two")
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	entries, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Text != "echo one" || entries[1].Text != "echo two" {
		t.Fatalf("entries = %+v", entries)
	}
	if !entries[0].At.Before(entries[1].At) && entries[0].At != entries[1].At {
		t.Fatalf("timestamps out of order: %v then %v", entries[0].At, entries[1].At)
	}
}

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	entries, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("got %d entries, want 0", len(entries))
	}
}
