package quiztemplate

import "testing"

func TestParseAllSections(t *testing.T) {
	doc := "//PREPEND BEGIN\naaa\n//PREPEND END\n\n//TEMPLATE BEGIN\nbbb\n//TEMPLATE END\n\n//APPEND BEGIN\nccc\n//APPEND END\n"

	got := Parse(doc)
	want := Sections{Prepend: "aaa\n", Template: "bbb\n", Append: "ccc\n"}
	if got != want {
		t.Fatalf("Parse = %+v, want %+v", got, want)
	}
}

func TestParseMissingSection(t *testing.T) {
	got := Parse("//TEMPLATE BEGIN\nint main() {\n}\n//TEMPLATE END\n")
	if got.Prepend != "" || got.Append != "" {
		t.Fatalf("missing sections should be empty: %+v", got)
	}
	if got.Template != "int main() {\n}\n" {
		t.Fatalf("Template = %q", got.Template)
	}
}

func TestParseFirstBlockWins(t *testing.T) {
	doc := "//APPEND BEGIN\nfirst\n//APPEND END\n//APPEND BEGIN\nsecond\n//APPEND END\n"
	if got := Parse(doc).Append; got != "first\n" {
		t.Fatalf("Append = %q, want first block only", got)
	}
}

func TestParseLenientInput(t *testing.T) {
	cases := map[string]Sections{
		"":                                 {},
		"no markers at all\n":              {},
		"//TEMPLATE BEGIN\nunclosed\nmore": {Template: "unclosed\nmore\n"},
		"  //TEMPLATE BEGIN  \r\nx\r\n//TEMPLATE END\r\n": {Template: "x\n"},
		"//FOO BEGIN\nignored\n//FOO END\n":               {},
	}
	for doc, want := range cases {
		if got := Parse(doc); got != want {
			t.Errorf("Parse(%q) = %+v, want %+v", doc, got, want)
		}
	}
}

func TestBuildTemplateOnly(t *testing.T) {
	got := Build(nil, []Entry{{Language: "C", Code: "int main(){}"}}, nil, PlainFormat)
	if got["C"] != "int main(){}" {
		t.Fatalf("Build = %q, want the body unchanged", got["C"])
	}
}

func TestBuildConcatenatesSlots(t *testing.T) {
	got := Build(
		[]Entry{{Language: "C", Code: "#include <stdio.h>\n"}},
		[]Entry{{Language: "C", Code: "int add(int a, int b) {}\n"}, {Language: "Java", Code: "class A {}\n"}},
		[]Entry{{Language: "C", Code: "int main() {}\n"}},
		PlainFormat,
	)
	if got["C"] != "#include <stdio.h>\nint add(int a, int b) {}\nint main() {}\n" {
		t.Fatalf("C = %q", got["C"])
	}
	if got["Java"] != "class A {}\n" {
		t.Fatalf("Java = %q", got["Java"])
	}
	if len(got) != 2 {
		t.Fatalf("only template languages are built, got %v", got)
	}
}

func TestBuildRemapsPython(t *testing.T) {
	got := Build(
		[]Entry{{Language: "Python", Code: "import sys\n"}},
		[]Entry{{Language: "Python", Code: "def f(): pass\n"}},
		nil,
		PlainFormat,
	)
	if _, ok := got["Python"]; ok {
		t.Fatalf("Python should be stored as Python3")
	}
	if got["Python3"] != "import sys\ndef f(): pass\n" {
		t.Fatalf("Python3 = %q", got["Python3"])
	}
}

func TestMarkedFormatRoundTrip(t *testing.T) {
	built := Build(
		[]Entry{{Language: "C", Code: "pre"}},
		[]Entry{{Language: "C", Code: "body"}},
		[]Entry{{Language: "C", Code: "post"}},
		MarkedFormat,
	)
	s := Parse(built["C"])
	if s.Prepend != "pre\n" || s.Template != "body\n" || s.Append != "post\n" {
		t.Fatalf("round trip = %+v", s)
	}
	if UserTemplates(built)["C"] != "body\n" {
		t.Fatalf("UserTemplates should expose only the template section")
	}
}
