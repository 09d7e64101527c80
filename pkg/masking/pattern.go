package masking

import (
	"log/slog"
	"regexp"
)

// CompiledPattern holds a pre-compiled regex pattern with its replacement.
type CompiledPattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
	Description string
}

// builtinPattern is the source form of a masking pattern.
type builtinPattern struct {
	Pattern     string
	Replacement string
	Description string
}

// builtinPatterns is the fixed credential sweep applied to every outbound
// surface (API state responses, stream messages, logged build output).
var builtinPatterns = map[string]builtinPattern{
	"github_token": {
		Pattern:     `\b(gh[pousr]|github_pat)_[A-Za-z0-9_]{16,255}\b`,
		Replacement: "[MASKED_GITHUB_TOKEN]",
		Description: "GitHub personal access and app tokens",
	},
	"bearer_token": {
		Pattern:     `(?i)(bearer\s+)[A-Za-z0-9\-._~+/]{16,}=*`,
		Replacement: "${1}[MASKED_TOKEN]",
		Description: "Authorization bearer tokens",
	},
	"api_key": {
		Pattern:     `(?i)\b(api[_-]?key|apikey|access[_-]?key)\s*[=:]\s*['"]?[A-Za-z0-9\-._]{12,}['"]?`,
		Replacement: "${1}=[MASKED_API_KEY]",
		Description: "API key assignments in config or log text",
	},
	"password_assignment": {
		Pattern:     `(?i)\b(password|passwd|pwd)\s*[=:]\s*['"]?[^\s'"]{4,}['"]?`,
		Replacement: "${1}=[MASKED_PASSWORD]",
		Description: "Password assignments in config or log text",
	},
	"private_key_block": {
		Pattern:     `-----BEGIN [A-Z ]*PRIVATE KEY-----[\s\S]*?-----END [A-Z ]*PRIVATE KEY-----`,
		Replacement: "[MASKED_PRIVATE_KEY]",
		Description: "PEM private key blocks",
	},
}

// compileBuiltinPatterns compiles all built-in regex patterns.
// Invalid patterns are logged and skipped.
func (s *MaskingService) compileBuiltinPatterns() {
	for name, pattern := range builtinPatterns {
		compiled, err := regexp.Compile(pattern.Pattern)
		if err != nil {
			slog.Error("Failed to compile built-in masking pattern, skipping",
				"pattern", name, "error", err)
			continue
		}
		s.patterns = append(s.patterns, &CompiledPattern{
			Name:        name,
			Regex:       compiled,
			Replacement: pattern.Replacement,
			Description: pattern.Description,
		})
	}
}
