// Package fps reads Free Problem Set XML exports (versions 1.1 and 1.2).
package fps

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"tle_quiz/internal/common"
	"tle_quiz/internal/domain/model"
	"tle_quiz/internal/domain/quiztemplate"
)

var (
	ErrMalformed          = errors.New("fps: malformed document")
	ErrUnsupportedVersion = errors.New("fps: unsupported version")
)

var supportedVersions = map[string]bool{"1.1": true, "1.2": true}

type Image struct {
	Src  string
	Blob string // base64
}

type TestCase struct {
	Input  string
	Output string
}

// Problem is one <item> of an FPS document, limits already normalised.
type Problem struct {
	Title         string               `json:"title" validate:"required,max=128"`
	Description   string               `json:"description" validate:"required"`
	Input         string               `json:"input" validate:"required"`
	Output        string               `json:"output" validate:"required"`
	Hint          string               `json:"hint"`
	Source        string               `json:"source" validate:"max=200"`
	TimeLimitMs   int                  `json:"time_limit" validate:"gte=1,lte=60000"`
	MemoryLimitMB int                  `json:"memory_limit" validate:"gte=1,lte=60000"`
	Samples       []model.Sample       `json:"samples"`
	TestCases     []TestCase           `json:"-"`
	Images        []Image              `json:"-"`
	Prepend       []quiztemplate.Entry `json:"prepend"`
	Template      []quiztemplate.Entry `json:"template"`
	Append        []quiztemplate.Entry `json:"append"`
	Solution      []quiztemplate.Entry `json:"solution"`
	SPJ           *quiztemplate.Entry  `json:"spj"`
}

// Validate checks the fields a quiz needs before it can be created.
func (p *Problem) Validate() error {
	return common.ValidateInput(p)
}

type node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []node     `xml:",any"`
}

func (n *node) attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func (n *node) child(name string) string {
	for i := range n.Children {
		if n.Children[i].XMLName.Local == name {
			return n.Children[i].Text
		}
	}
	return ""
}

// Parse decodes an FPS document into its problems.
func Parse(r io.Reader) ([]Problem, error) {
	var root node
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if root.XMLName.Local != "fps" {
		return nil, fmt.Errorf("%w: root element is <%s>", ErrMalformed, root.XMLName.Local)
	}
	if v := root.attr("version"); !supportedVersions[v] {
		return nil, fmt.Errorf("%w %q", ErrUnsupportedVersion, v)
	}

	var problems []Problem
	for i := range root.Children {
		if root.Children[i].XMLName.Local != "item" {
			continue
		}
		p, err := parseItem(&root.Children[i])
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", len(problems)+1, err)
		}
		problems = append(problems, p)
	}
	return problems, nil
}

func parseItem(item *node) (Problem, error) {
	var p Problem
	for i := range item.Children {
		c := &item.Children[i]
		text := c.Text
		switch c.XMLName.Local {
		case "title":
			p.Title = strings.TrimSpace(text)
		case "description":
			p.Description = text
		case "input":
			p.Input = text
		case "output":
			p.Output = text
		case "hint":
			p.Hint = text
		case "source":
			p.Source = strings.TrimSpace(text)
		case "time_limit":
			ms, err := timeLimitMs(text, c.attr("unit"))
			if err != nil {
				return p, err
			}
			p.TimeLimitMs = ms
		case "memory_limit":
			mb, err := memoryLimitMB(text, c.attr("unit"))
			if err != nil {
				return p, err
			}
			p.MemoryLimitMB = mb
		case "sample_input":
			p.Samples = append(p.Samples, model.Sample{Input: text})
		case "sample_output":
			if n := len(p.Samples); n > 0 && p.Samples[n-1].Output == "" {
				p.Samples[n-1].Output = text
			} else {
				p.Samples = append(p.Samples, model.Sample{Output: text})
			}
		case "test_input":
			p.TestCases = append(p.TestCases, TestCase{Input: text})
		case "test_output":
			if n := len(p.TestCases); n > 0 && p.TestCases[n-1].Output == "" {
				p.TestCases[n-1].Output = text
			} else {
				p.TestCases = append(p.TestCases, TestCase{Output: text})
			}
		case "img":
			p.Images = append(p.Images, Image{Src: strings.TrimSpace(c.child("src")), Blob: strings.TrimSpace(c.child("base64"))})
		case "prepend":
			p.Prepend = append(p.Prepend, entry(c))
		case "template":
			p.Template = append(p.Template, entry(c))
		case "append":
			p.Append = append(p.Append, entry(c))
		case "solution":
			p.Solution = append(p.Solution, entry(c))
		case "spj":
			e := entry(c)
			p.SPJ = &e
		}
	}
	return p, nil
}

func entry(n *node) quiztemplate.Entry {
	return quiztemplate.Entry{Language: n.attr("language"), Code: n.Text}
}

func timeLimitMs(text, unit string) (int, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: time_limit %q", ErrMalformed, text)
	}
	switch strings.ToLower(unit) {
	case "ms":
		return int(math.Round(v)), nil
	case "", "s":
		return int(math.Round(v * 1000)), nil
	default:
		return 0, fmt.Errorf("%w: time_limit unit %q", ErrMalformed, unit)
	}
}

func memoryLimitMB(text, unit string) (int, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: memory_limit %q", ErrMalformed, text)
	}
	switch strings.ToLower(unit) {
	case "", "mb", "m":
		return int(math.Round(v)), nil
	case "kb", "k":
		return max(int(math.Ceil(v/1024)), 1), nil
	default:
		return 0, fmt.Errorf("%w: memory_limit unit %q", ErrMalformed, unit)
	}
}
