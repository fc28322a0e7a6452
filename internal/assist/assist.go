// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assist assembles the retrieval context handed to the chat
// assistant. Prompt construction and provider HTTP calls live behind the
// Completer interface; this package never talks to a provider itself.
package assist

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/paperdesk/internal/index"
	"github.com/pdiddy/paperdesk/pkg/types"
)

// Completer is the opaque LLM-completion collaborator.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// PaperLister is the slice of the paper store the context builder reads.
type PaperLister interface {
	Starred() ([]types.Paper, error)
	OpenList() ([]types.OpenPaper, error)
}

// Retriever is the slice of the text index the context builder queries.
type Retriever interface {
	Query(ctx context.Context, query string, limit int) ([]index.Snippet, error)
}

const defaultMaxSnippets = 8

// ContextBuilder gathers locally cached paper metadata and indexed PDF
// text relevant to a question.
type ContextBuilder struct {
	Papers      PaperLister
	Index       Retriever
	MaxSnippets int
}

// Build returns a context block: the user's starred and open papers plus
// the best-matching text snippets for the question. Index failures degrade
// the context rather than failing the build; the assistant can still answer
// from metadata alone.
func (b *ContextBuilder) Build(ctx context.Context, question string) (string, error) {
	var sb strings.Builder

	starred, err := b.Papers.Starred()
	if err != nil {
		return "", err
	}
	open, err := b.Papers.OpenList()
	if err != nil {
		return "", err
	}

	if len(starred) > 0 {
		sb.WriteString("Starred papers:\n")
		for _, p := range starred {
			writePaperLine(&sb, p)
		}
	}
	if len(open) > 0 {
		sb.WriteString("Open papers:\n")
		for _, op := range open {
			writePaperLine(&sb, op.Paper)
		}
	}

	if b.Index != nil && strings.TrimSpace(question) != "" {
		max := b.MaxSnippets
		if max <= 0 {
			max = defaultMaxSnippets
		}
		snippets, err := b.Index.Query(ctx, question, max)
		if err == nil && len(snippets) > 0 {
			sb.WriteString("Relevant excerpts:\n")
			for _, s := range snippets {
				fmt.Fprintf(&sb, "- [%s] %s: %s\n", s.PaperID, s.Title, s.Excerpt)
			}
		}
	}

	return sb.String(), nil
}

// Ask builds the context for question and hands both to the completer.
func Ask(ctx context.Context, c Completer, b *ContextBuilder, question string) (string, error) {
	contextBlock, err := b.Build(ctx, question)
	if err != nil {
		return "", err
	}
	return c.Complete(ctx, contextBlock+"\nQuestion: "+question)
}

func writePaperLine(sb *strings.Builder, p types.Paper) {
	authors := ""
	if len(p.Authors) > 0 {
		authors = p.Authors[0].Name
		if len(p.Authors) > 1 {
			authors += " et al."
		}
	}
	fmt.Fprintf(sb, "- [%s] %s (%s, %s)\n", p.ID, p.Title, authors, p.Source)
}
