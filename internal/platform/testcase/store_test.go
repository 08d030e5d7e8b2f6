package testcase

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveWritesPairsAndInfo(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "test_case"))

	id, entries, err := s.Save([]Case{
		{Input: "1 2\n", Output: "3\n"},
		{Input: "5 5\n", Output: "10  \n\n"},
	}, false)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[1].InputName != "2.in" || entries[1].OutputName != "2.out" {
		t.Fatalf("unexpected names: %+v", entries[1])
	}
	if entries[1].StrippedOutputMD5 != StrippedMD5([]byte("10")) {
		t.Fatalf("stripped md5 should ignore trailing whitespace")
	}

	got, err := os.ReadFile(filepath.Join(s.Root, id, "1.out"))
	if err != nil {
		t.Fatalf("read 1.out: %v", err)
	}
	if string(got) != "3\n" {
		t.Fatalf("1.out = %q", got)
	}

	info, err := s.readInfo(id)
	if err != nil {
		t.Fatalf("readInfo: %v", err)
	}
	if info.SPJ || len(info.TestCases) != 2 || info.TestCases["1"].OutputSize != 2 {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestSaveSPJOmitsOutputs(t *testing.T) {
	s := NewStore(t.TempDir())

	id, entries, err := s.Save([]Case{{Input: "x", Output: "ignored"}}, true)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if entries[0].OutputName != "" {
		t.Fatalf("spj bundle should not carry output names: %+v", entries[0])
	}
	if _, err := os.Stat(filepath.Join(s.Root, id, "1.out")); !os.IsNotExist(err) {
		t.Fatalf("1.out should not exist for spj bundles, stat err = %v", err)
	}
}

func TestRemove(t *testing.T) {
	s := NewStore(t.TempDir())
	id, _, err := s.Save([]Case{{Input: "a", Output: "b"}}, false)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Remove(id); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Root, id)); !os.IsNotExist(err) {
		t.Fatalf("bundle dir still present")
	}
	if err := s.Remove("../etc"); err != ErrInvalidID {
		t.Fatalf("Remove with traversal = %v, want ErrInvalidID", err)
	}
}
