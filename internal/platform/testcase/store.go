package testcase

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const infoFile = "info"

var ErrInvalidID = errors.New("testcase: invalid bundle id")

// Case is one input/output pair as it arrives from an import.
type Case struct {
	Input  string
	Output string
}

// Entry describes a stored pair inside the bundle inventory.
type Entry struct {
	InputName         string `json:"input_name"`
	InputSize         int    `json:"input_size"`
	OutputName        string `json:"output_name,omitempty"`
	OutputSize        int    `json:"output_size,omitempty"`
	StrippedOutputMD5 string `json:"stripped_output_md5,omitempty"`
}

// Info is the inventory file the judge reads next to the case files.
type Info struct {
	SPJ       bool             `json:"spj"`
	TestCases map[string]Entry `json:"test_cases"`
}

// Store keeps test-case bundles as directories under Root, one per bundle id.
type Store struct {
	Root string
}

func NewStore(root string) *Store {
	return &Store{Root: root}
}

// Save writes cases as 1.in/1.out, 2.in/2.out... plus the info inventory into
// a fresh bundle directory. Nothing is left on disk when it fails.
func (s *Store) Save(cases []Case, spj bool) (string, []Entry, error) {
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return "", nil, fmt.Errorf("testcase: create root: %w", err)
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	dir := filepath.Join(s.Root, id)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("testcase: create bundle dir: %w", err)
	}

	entries, err := writeBundle(dir, cases, spj)
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", nil, err
	}
	return id, entries, nil
}

func writeBundle(dir string, cases []Case, spj bool) ([]Entry, error) {
	info := Info{SPJ: spj, TestCases: make(map[string]Entry, len(cases))}
	entries := make([]Entry, 0, len(cases))

	for i, c := range cases {
		n := strconv.Itoa(i + 1)
		e := Entry{InputName: n + ".in", InputSize: len(c.Input)}
		if err := os.WriteFile(filepath.Join(dir, e.InputName), []byte(c.Input), 0o644); err != nil {
			return nil, fmt.Errorf("testcase: write %s: %w", e.InputName, err)
		}
		if !spj {
			out := []byte(c.Output)
			e.OutputName = n + ".out"
			e.OutputSize = len(out)
			e.StrippedOutputMD5 = StrippedMD5(out)
			if err := os.WriteFile(filepath.Join(dir, e.OutputName), out, 0o644); err != nil {
				return nil, fmt.Errorf("testcase: write %s: %w", e.OutputName, err)
			}
		}
		info.TestCases[n] = e
		entries = append(entries, e)
	}

	raw, err := json.MarshalIndent(info, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("testcase: encode info: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, infoFile), raw, 0o644); err != nil {
		return nil, fmt.Errorf("testcase: write info: %w", err)
	}
	return entries, nil
}

// readInfo loads the inventory of a stored bundle.
func (s *Store) readInfo(id string) (*Info, error) {
	dir, err := s.dir(id)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(filepath.Join(dir, infoFile))
	if err != nil {
		return nil, fmt.Errorf("testcase: read info: %w", err)
	}
	var info Info
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("testcase: decode info: %w", err)
	}
	return &info, nil
}

func (s *Store) Remove(id string) error {
	dir, err := s.dir(id)
	if err != nil {
		return err
	}
	return os.RemoveAll(dir)
}

func (s *Store) dir(id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", ErrInvalidID
	}
	return filepath.Join(s.Root, id), nil
}

// StrippedMD5 hashes output with trailing whitespace removed, matching how the
// judge compares answers.
func StrippedMD5(output []byte) string {
	sum := md5.Sum(bytes.TrimRight(output, " \t\r\n\v\f"))
	return hex.EncodeToString(sum[:])
}
