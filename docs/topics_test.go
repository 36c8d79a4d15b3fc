package docs

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

func TestTopics(t *testing.T) {
	// Every topic listed in readme.md loads, and every .md file is listed.
	file, err := os.Open("readme.md")
	if err != nil {
		t.Fatalf("failed to open readme.md: %v", err)
	}
	defer file.Close()

	var topicsInReadme []string
	scanner := bufio.NewScanner(file)
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	for scanner.Scan() {
		if matches := topicRegex.FindStringSubmatch(scanner.Text()); len(matches) > 1 {
			topicsInReadme = append(topicsInReadme, strings.TrimSpace(matches[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("error scanning readme.md: %v", err)
	}

	for _, topic := range topicsInReadme {
		t.Run("load_"+topic, func(t *testing.T) {
			if _, err := GetTopic(topic); err != nil {
				t.Errorf("failed to get topic %q: %v", topic, err)
			}
		})
	}

	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatalf("failed to glob *.md: %v", err)
	}
	for _, f := range files {
		base := strings.TrimSuffix(filepath.Base(f), ".md")
		if base != "readme" && !slices.Contains(topicsInReadme, base) {
			t.Errorf("topic %q is not listed in docs/readme.md", base)
		}
	}

	all, err := GetAllTopics()
	if err != nil {
		t.Fatal(err)
	}
	slices.Sort(topicsInReadme)
	if !slices.Equal(all, topicsInReadme) {
		t.Errorf("GetAllTopics() = %v, want %v", all, topicsInReadme)
	}
}

func TestTopics_Headings(t *testing.T) {
	// Every topic starts with a single level one heading.
	topics, err := GetAllTopics()
	if err != nil {
		t.Fatal(err)
	}
	for _, topic := range topics {
		t.Run(topic, func(t *testing.T) {
			content, _ := GetTopic(topic)
			root := goldmark.DefaultParser().Parse(text.NewReader([]byte(content)))
			var levels []int
			ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
				if h, ok := n.(*ast.Heading); ok && entering {
					levels = append(levels, h.Level)
				}
				return ast.WalkContinue, nil
			})
			if len(levels) == 0 || levels[0] != 1 || slices.Contains(levels[1:], 1) {
				t.Errorf("topic %q headings = %v, want a single leading level 1", topic, levels)
			}
			if _, ok := root.FirstChild().(*ast.Heading); !ok {
				t.Errorf("topic %q does not start with a heading", topic)
			}
		})
	}
}

func TestGetTopics(t *testing.T) {
	both, err := GetTopics("dates", "backup")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(both, "# Dates") || !strings.Contains(both, "# Backup") {
		t.Errorf("GetTopics() = %q", both)
	}
	star, err := GetTopic("*")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"# Storage modes", "# HTTP API"} {
		if !strings.Contains(star, want) {
			t.Errorf("GetTopic(*) does not contain %q", want)
		}
	}
	if _, err := GetTopic("nope"); err == nil {
		t.Errorf("GetTopic(nope) succeeded")
	}
}
