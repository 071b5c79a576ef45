package utils

import (
	"crypto/rand"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

const licenseKeyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var (
	camelBoundary  = regexp.MustCompile(`([a-z])([A-Z])`)
	slugInvalid    = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugWhitespace = regexp.MustCompile(`\s+`)
	slugDashes     = regexp.MustCompile(`-+`)

	htmlEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#x27;",
	)
)

// SanitizeInput escapes the HTML-significant characters & < > " '.
func SanitizeInput(input string) string {
	return htmlEscaper.Replace(input)
}

// SanitizeMetadata returns a copy of metadata with every string, including
// strings nested in slices and maps, passed through SanitizeInput.
func SanitizeMetadata(metadata map[string]any) map[string]any {
	sanitized := make(map[string]any, len(metadata))
	for key, value := range metadata {
		sanitized[key] = sanitizeValue(value)
	}
	return sanitized
}

func sanitizeValue(value any) any {
	switch v := value.(type) {
	case string:
		return SanitizeInput(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			if s, ok := item.(string); ok {
				out[i] = SanitizeInput(s)
				continue
			}
			out[i] = item
		}
		return out
	case map[string]any:
		return SanitizeMetadata(v)
	default:
		return value
	}
}

// GenerateLicenseKey returns a random 32 character key drawn from A-Z and 0-9.
func GenerateLicenseKey() string {
	const alphabetSize = byte(len(licenseKeyAlphabet))
	// Largest multiple of the alphabet size below 256, to keep the draw uniform.
	const limit = 256 - 256%int(alphabetSize)

	key := make([]byte, 0, LicenseKeyLength)
	buf := make([]byte, LicenseKeyLength*2)
	for len(key) < LicenseKeyLength {
		_, _ = rand.Read(buf)
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			key = append(key, licenseKeyAlphabet[b%alphabetSize])
			if len(key) == LicenseKeyLength {
				break
			}
		}
	}
	return string(key)
}

// GenerateUUID returns a random (version 4) UUID string.
func GenerateUUID() string {
	return uuid.NewString()
}

// CapitalizeFirst upper-cases the first rune and lower-cases the rest.
func CapitalizeFirst(text string) string {
	if text == "" {
		return text
	}
	first, size := utf8.DecodeRuneInString(text)
	return string(unicode.ToUpper(first)) + strings.ToLower(text[size:])
}

// ToSnakeCase converts camelCase or PascalCase text to snake_case.
func ToSnakeCase(text string) string {
	return strings.ToLower(camelBoundary.ReplaceAllString(text, "${1}_${2}"))
}

// ToPascalCase converts snake_case text to PascalCase.
func ToPascalCase(text string) string {
	parts := strings.Split(text, "_")
	var b strings.Builder
	for _, part := range parts {
		b.WriteString(CapitalizeFirst(part))
	}
	return b.String()
}

// TruncateString shortens text to at most maxLength runes, marking the cut with "...".
func TruncateString(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	if maxLength <= 3 {
		if maxLength <= 0 {
			return ""
		}
		return string(runes[:maxLength])
	}
	return string(runes[:maxLength-3]) + "..."
}

// Slugify lower-cases text and reduces it to a-z, 0-9 and single dashes.
func Slugify(text string) string {
	slug := strings.ToLower(text)
	slug = slugInvalid.ReplaceAllString(slug, "")
	slug = slugWhitespace.ReplaceAllString(slug, "-")
	slug = slugDashes.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
