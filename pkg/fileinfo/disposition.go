package fileinfo

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
)

// charset'language'value, the value optionally wrapped in double quotes
var extValueRegexp = regexp.MustCompile(`^(.+?)'.*?'"?(.*?)"?$`)

// FilenameFromContentDisposition extracts the filename from an `attachment` Content-Disposition
// header. The RFC 5987 `filename*` parameter takes precedence over a plain `filename`. Directory
// components are stripped from the result.
func FilenameFromContentDisposition(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	dispositionType, params := parseDisposition(header)
	if dispositionType != "attachment" {
		return "", false
	}
	if ext, ok := params["filename*"]; ok {
		if name, ok := parseExtendedValue(ext); ok {
			return sanitizeFilename(name)
		}
	}
	if name, ok := params["filename"]; ok {
		return sanitizeFilename(unquote(name))
	}
	return "", false
}

// parseDisposition splits a header of the form `type; key=value; key="quoted; value"`.
// Keys are lower-cased, values are returned as written.
func parseDisposition(header string) (string, map[string]string) {
	parts := splitUnquoted(header, ';')
	params := make(map[string]string, len(parts))
	dispositionType := strings.ToLower(strings.TrimSpace(parts[0]))
	for _, part := range parts[1:] {
		key, value, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		if _, dup := params[key]; dup {
			continue
		}
		params[key] = strings.TrimSpace(value)
	}
	return dispositionType, params
}

func splitUnquoted(s string, sep byte) []string {
	var parts []string
	inQuotes, escaped := false, false
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inQuotes:
			escaped = true
		case c == '"':
			inQuotes = !inQuotes
		case c == sep && !inQuotes:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

func unquote(value string) string {
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		value = value[1 : len(value)-1]
		var b strings.Builder
		escaped := false
		for i := 0; i < len(value); i++ {
			if value[i] == '\\' && !escaped {
				escaped = true
				continue
			}
			escaped = false
			b.WriteByte(value[i])
		}
		return b.String()
	}
	return strings.Trim(value, `"`)
}

// parseExtendedValue decodes an RFC 5987 ext-value such as UTF-8''caf%C3%A9.pdf.
func parseExtendedValue(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' && strings.Count(value, `"`) == 2 {
		value = value[1 : len(value)-1]
	}
	m := extValueRegexp.FindStringSubmatch(value)
	if m == nil {
		return "", false
	}
	charset, encoded := strings.ToLower(m[1]), m[2]
	raw, err := url.PathUnescape(encoded)
	if err != nil {
		return "", false
	}
	switch charset {
	case "utf-8", "utf8", "us-ascii":
		return raw, true
	}
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil || enc == nil {
		return "", false
	}
	decoded, err := enc.NewDecoder().String(raw)
	if err != nil {
		return "", false
	}
	return decoded, true
}

func sanitizeFilename(name string) (string, bool) {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	switch name {
	case "", ".", "..", "/":
		return "", false
	}
	return name, true
}
