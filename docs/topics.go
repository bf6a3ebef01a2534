// Package docs embeds the user manual of tbk.
package docs

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

//go:embed *.md
var docs embed.FS

// Topic is a documentation page.
type Topic struct {
	Name  string // file name without .md
	Title string // first heading of the page
}

// GetTopic returns the content of a documentation topic.
// The star topic "*" returns all topics.
func GetTopic(topic string) (string, error) {
	if topic == "*" {
		names, err := GetAllTopics()
		if err != nil {
			return "", err
		}
		return GetTopics(names...)
	}

	content, err := docs.ReadFile(topic + ".md")
	if err != nil {
		return "", fmt.Errorf("topic %q not found: %w", topic, err)
	}
	return string(content), nil
}

// GetTopics returns the content of multiple documentation topics concatenated together.
func GetTopics(topics ...string) (string, error) {
	var b bytes.Buffer
	for _, topic := range topics {
		content, err := GetTopic(topic)
		if err != nil {
			return "", err
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// GetAllTopics returns the names of all the topics, except the readme.
func GetAllTopics() ([]string, error) {
	entries, err := fs.Glob(docs, "*.md")
	if err != nil {
		return nil, err
	}
	var topics []string
	for _, e := range entries {
		base := strings.TrimSuffix(path.Base(e), ".md")
		if base == "readme" {
			continue
		}
		topics = append(topics, base)
	}
	sort.Strings(topics)
	return topics, nil
}

// List returns every topic with its title.
func List() ([]Topic, error) {
	names, err := GetAllTopics()
	if err != nil {
		return nil, err
	}
	res := make([]Topic, 0, len(names))
	for _, name := range names {
		content, err := docs.ReadFile(name + ".md")
		if err != nil {
			return nil, err
		}
		res = append(res, Topic{Name: name, Title: title(content)})
	}
	return res, nil
}

// title returns the text of the first heading in a markdown source.
func title(source []byte) string {
	root := goldmark.DefaultParser().Parse(text.NewReader(source))
	var res string
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		var b strings.Builder
		for c := h.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				b.Write(t.Segment.Value(source))
			}
		}
		res = b.String()
		return ast.WalkStop, nil
	})
	return res
}
