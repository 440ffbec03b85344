package scanner

import (
	"path/filepath"
	"strings"
)

// languageByExtension is the closed extension lookup table. Files whose
// extension is not listed here still appear in the manifest but carry no
// language tag and are excluded from indexing.
var languageByExtension = map[string]string{
	".py":    "python",
	".js":    "javascript",
	".ts":    "typescript",
	".tsx":   "typescript-react",
	".jsx":   "javascript-react",
	".go":    "go",
	".rs":    "rust",
	".java":  "java",
	".cpp":   "cpp",
	".c":     "c",
	".h":     "cpp",
	".hpp":   "cpp",
	".cs":    "csharp",
	".rb":    "ruby",
	".php":   "php",
	".swift": "swift",
	".kt":    "kotlin",
	".sh":    "shell",
	".md":    "markdown",
	".json":  "json",
	".yml":   "yaml",
	".yaml":  "yaml",
	".xml":   "xml",
	".html":  "html",
	".css":   "css",
	".sql":   "sql",
}

// DetectLanguage returns the language tag for a path, or the empty string
// when the extension is not in the table.
func DetectLanguage(path string) string {
	return languageByExtension[strings.ToLower(filepath.Ext(path))]
}
