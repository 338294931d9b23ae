package intent

import "strings"

// Engine is one web-search target addressed by a short keyword prefix.
type Engine struct {
	ID          string `toml:"-"`
	Name        string `toml:"name"`
	Keyword     string `toml:"keyword"`
	URLTemplate string `toml:"url_template"`
}

// BuildURL fills the engine's template with the percent-encoded query.
func (e Engine) BuildURL(query string) string {
	return strings.ReplaceAll(e.URLTemplate, "{query}", percentEncode(query))
}

// ValidTemplate reports whether a template has the {query} placeholder.
func ValidTemplate(template string) bool {
	return strings.Contains(template, "{query}")
}

// builtinEngines is the fixed keyword table. User-configured engines are
// merged over it at construction.
var builtinEngines = []Engine{
	{ID: "google", Name: "Google", Keyword: "gg", URLTemplate: "https://www.google.com/search?q={query}"},
	{ID: "baidu", Name: "Baidu", Keyword: "bd", URLTemplate: "https://www.baidu.com/s?wd={query}"},
	{ID: "bing", Name: "Bing", Keyword: "bi", URLTemplate: "https://www.bing.com/search?q={query}"},
	{ID: "duckduckgo", Name: "DuckDuckGo", Keyword: "ddg", URLTemplate: "https://duckduckgo.com/?q={query}"},
	{ID: "github", Name: "GitHub", Keyword: "gh", URLTemplate: "https://github.com/search?q={query}"},
	{ID: "stackoverflow", Name: "Stack Overflow", Keyword: "so", URLTemplate: "https://stackoverflow.com/search?q={query}"},
	{ID: "youtube", Name: "YouTube", Keyword: "yt", URLTemplate: "https://www.youtube.com/results?search_query={query}"},
	{ID: "twitter", Name: "Twitter/X", Keyword: "tw", URLTemplate: "https://twitter.com/search?q={query}"},
	{ID: "npm", Name: "NPM", Keyword: "npm", URLTemplate: "https://www.npmjs.com/search?q={query}"},
	{ID: "crates", Name: "Crates.io", Keyword: "crate", URLTemplate: "https://crates.io/search?q={query}"},
}
