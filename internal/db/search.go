package db

import "strings"

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName string
	// Filter is an FT.SEARCH pre-filter such as "@content_type:{product|wine}".
	Filter       string
	VectorField  string
	Vector       []float32
	K            int
	ReturnFields []string
}

// TextQuery is the input for BM25 text search.
type TextQuery struct {
	IndexName    string
	TextField    string
	Query        string
	Filter       string
	TopK         int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// TagFilter builds "@field:{a|b}" with tag values escaped; "" when values is empty.
func TagFilter(field string, values ...string) string {
	if len(values) == 0 {
		return ""
	}
	escaped := make([]string, 0, len(values))
	for _, v := range values {
		escaped = append(escaped, tagEscaper.Replace(v))
	}
	return "@" + field + ":{" + strings.Join(escaped, "|") + "}"
}

var tagEscaper = strings.NewReplacer(
	",", `\,`, ".", `\.`, "<", `\<`, ">", `\>`, "{", `\{`, "}", `\}`,
	`"`, `\"`, "'", `\'`, ":", `\:`, ";", `\;`, "!", `\!`, "@", `\@`,
	"#", `\#`, "$", `\$`, "%", `\%`, "^", `\^`, "&", `\&`, "*", `\*`,
	"(", `\(`, ")", `\)`, "-", `\-`, "+", `\+`, "=", `\=`, "~", `\~`,
	" ", `\ `, "|", `\|`,
)

// EscapeQuery escapes FT.SEARCH query syntax in free text.
func EscapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`, `'`, `\'`, `"`, `\"`, `@`, `\@`, `{`, `\{`, `}`, `\}`,
	`(`, `\(`, `)`, `\)`, `|`, `\|`, `-`, `\-`, `~`, `\~`, `*`, `\*`,
	`[`, `\[`, `]`, `\]`, `!`, `\!`, `%`, `\%`, `^`, `\^`, `$`, `\$`,
	`<`, `\<`, `>`, `\>`, `=`, `\=`, `;`, `\;`, `+`, `\+`, `:`, `\:`,
)
