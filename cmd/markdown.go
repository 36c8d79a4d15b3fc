package cmd

import (
	"fmt"
	"log"

	"github.com/charmbracelet/glamour"
)

// printMarkdown renders md for the terminal, or prints it as is with -plain.
func printMarkdown(md string) {
	if *plain {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, renderMarkdown(md))
}

// renderMarkdown renders md with the terminal style, falling back to md.
func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		log.Printf("markdown-renderer-failed err=%q", err)
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		log.Printf("markdown-render-failed err=%q", err)
		return md
	}
	return out
}
