package spiral

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---"

// Parse deserializes a raw memory file byte slice into an Entry.
func Parse(raw []byte) (*Entry, error) {
	s := string(raw)
	if !strings.HasPrefix(s, frontMatterDelimiter) {
		return nil, fmt.Errorf("spiral: missing front-matter delimiter")
	}
	rest := s[len(frontMatterDelimiter):]
	idx := strings.Index(rest, "\n"+frontMatterDelimiter)
	if idx == -1 {
		return nil, fmt.Errorf("spiral: unclosed front-matter block")
	}
	yamlBlock := rest[:idx]
	// Remove the closing delimiter and up to two newlines (if separated by
	// a blank line)
	bodyRaw := rest[idx+len("\n"+frontMatterDelimiter):]
	body := bodyRaw
	if strings.HasPrefix(bodyRaw, "\n\n") {
		body = bodyRaw[2:]
	} else if strings.HasPrefix(bodyRaw, "\n") {
		body = bodyRaw[1:]
	}

	var meta EntryMeta
	if err := yaml.Unmarshal([]byte(yamlBlock), &meta); err != nil {
		return nil, fmt.Errorf("spiral: front-matter parse error: %w", err)
	}
	return &Entry{Meta: meta, Content: body}, nil
}

// Serialize renders an Entry back to its on-disk byte representation.
func Serialize(e *Entry) ([]byte, error) {
	yamlBytes, err := yaml.Marshal(&e.Meta)
	if err != nil {
		return nil, fmt.Errorf("spiral: serialize error: %w", err)
	}
	var sb strings.Builder
	sb.WriteString(frontMatterDelimiter + "\n")
	sb.Write(yamlBytes)
	sb.WriteString(frontMatterDelimiter + "\n\n")
	sb.WriteString(e.Content)
	return []byte(sb.String()), nil
}
