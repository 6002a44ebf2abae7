package steps

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

var fmDelimiter = []byte("---")

// splitFrontMatter separates a leading YAML block delimited by "---" lines
// from the rest of a page. Content without such a block is all body.
func splitFrontMatter(content []byte) (fm, body []byte) {
	content = bytes.TrimPrefix(content, []byte("\ufeff"))
	first, rest, ok := bytes.Cut(content, []byte("\n"))
	if !ok || !bytes.Equal(bytes.TrimRight(first, " \r"), fmDelimiter) {
		return nil, content
	}

	for offset := 0; offset <= len(rest); {
		line, tail, found := bytes.Cut(rest[offset:], []byte("\n"))
		if bytes.Equal(bytes.TrimRight(line, " \r"), fmDelimiter) {
			return rest[:offset], tail
		}
		if !found {
			break
		}
		offset += len(line) + 1
	}
	return nil, content
}

// parseFrontMatter decodes a YAML front matter block.
func parseFrontMatter(fm []byte) (map[string]any, error) {
	values := make(map[string]any)
	if len(bytes.TrimSpace(fm)) == 0 {
		return values, nil
	}
	if err := yaml.Unmarshal(fm, &values); err != nil {
		return nil, fmt.Errorf("parsing front matter: %w", err)
	}
	return values, nil
}
