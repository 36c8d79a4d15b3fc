// Package docs holds the help topics of pft.
package docs

import (
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strings"
)

//go:embed *.md
var docs embed.FS

// index is the topic listing all the others.
const index = "readme"

// GetTopic returns the markdown of a topic. "*" returns every topic.
func GetTopic(topic string) (string, error) {
	if topic == "*" {
		return GetTopics(topic)
	}
	content, err := docs.ReadFile(topic + ".md")
	if err != nil {
		return "", fmt.Errorf("topic %q not found: %w", topic, err)
	}
	return string(content), nil
}

// GetTopics concatenates topics, "*" expands to every topic.
func GetTopics(topics ...string) (string, error) {
	var names []string
	for _, t := range topics {
		if t != "*" {
			names = append(names, t)
			continue
		}
		all, err := GetAllTopics()
		if err != nil {
			return "", err
		}
		names = append(names, all...)
	}
	var b strings.Builder
	for _, name := range names {
		content, err := GetTopic(name)
		if err != nil {
			return "", err
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// GetAllTopics lists the topics, sorted, without the index.
func GetAllTopics() ([]string, error) {
	files, err := fs.Glob(docs, "*.md")
	if err != nil {
		return nil, err
	}
	var topics []string
	for _, f := range files {
		if name := strings.TrimSuffix(f, ".md"); name != index {
			topics = append(topics, name)
		}
	}
	slices.Sort(topics)
	return topics, nil
}
