package quiztemplate

import "fmt"

// Entry is one {language, code} item as it comes out of an import file.
type Entry struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// Format joins the three slots of one language into the stored template.
type Format func(pre, body, post string) string

// PlainFormat concatenates the slots as they are.
func PlainFormat(pre, body, post string) string {
	return pre + body + post
}

const markedBase = "//PREPEND BEGIN\n%s\n//PREPEND END\n\n//TEMPLATE BEGIN\n%s\n//TEMPLATE END\n\n//APPEND BEGIN\n%s\n//APPEND END"

// MarkedFormat wraps every slot in its section markers so Parse can recover
// the user-facing part later.
func MarkedFormat(pre, body, post string) string {
	return fmt.Sprintf(markedBase, pre, body, post)
}

// languageAliases maps labels found in legacy import files to ours.
var languageAliases = map[string]string{
	"Python": "Python3",
}

func NormalizeLanguage(lang string) string {
	if alias, ok := languageAliases[lang]; ok {
		return alias
	}
	return lang
}

// Build composes one template per language present in template. Missing
// prepend or append code counts as "". Later entries for the same language
// replace earlier ones.
func Build(prepend, template, appendix []Entry, format Format) map[string]string {
	if format == nil {
		format = PlainFormat
	}
	pre := index(prepend)
	post := index(appendix)

	out := make(map[string]string, len(template))
	for _, t := range template {
		lang := NormalizeLanguage(t.Language)
		out[lang] = format(pre[lang], t.Code, post[lang])
	}
	return out
}

func index(entries []Entry) map[string]string {
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		m[NormalizeLanguage(e.Language)] = e.Code
	}
	return m
}

// UserTemplates reduces stored templates to the part a user edits.
func UserTemplates(stored map[string]string) map[string]string {
	out := make(map[string]string, len(stored))
	for lang, doc := range stored {
		out[lang] = Parse(doc).Template
	}
	return out
}
