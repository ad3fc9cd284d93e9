package ops

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/errors"
)

// MaxImportFileSize is the largest notes file ImportNotes reads.
const MaxImportFileSize = 10 * 1024 * 1024

// ImportNotesInput contains parameters for the ImportNotes operation.
type ImportNotesInput struct {
	Path string // required; .md, .markdown or .txt
}

// ImportNotesOutput summarizes an import.
type ImportNotesOutput struct {
	Notes            int           `json:"notes"`
	Imported         int           `json:"imported"`
	Duplicates       int           `json:"duplicates"`
	EnvelopesCreated int           `json:"envelopes_created"`
	Errors           []ImportError `json:"errors"`
}

// ImportError describes a note that could not be processed.
type ImportError struct {
	Index   int    `json:"index"`
	Note    string `json:"note"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportNotes processes every note in a file. In markdown each paragraph or
// list item is one note and headings are skipped; in plain text each
// non-empty line is one note. A failing note is reported and the rest
// continue.
func (s *Service) ImportNotes(ctx context.Context, input ImportNotesInput) (*ImportNotesOutput, error) {
	if err := s.Paths.Validate(input.Path, PathCheckRead, ImportExtensions); err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	src, err := io.ReadAll(io.LimitReader(file, MaxImportFileSize+1))
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to read import file: %w", err))
	}
	if len(src) > MaxImportFileSize {
		info, statErr := file.Stat()
		actual := int64(len(src))
		if statErr == nil {
			actual = info.Size()
		}
		return nil, errors.NewFileTooLarge(MaxImportFileSize, actual)
	}

	var notes []string
	if strings.EqualFold(filepath.Ext(input.Path), ".txt") {
		notes = textNotes(src)
	} else {
		notes = MarkdownNotes(src)
	}

	out := &ImportNotesOutput{Notes: len(notes), Errors: []ImportError{}}
	for i, note := range notes {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewInternal(err)
		}
		res, err := s.Pipeline.Process(ctx, note)
		if err != nil {
			code := string(errors.ErrInternal)
			if e, ok := errors.As(err); ok {
				code = string(e.Code)
			}
			out.Errors = append(out.Errors, ImportError{Index: i, Note: note, Code: code, Message: err.Error()})
			continue
		}
		switch {
		case res.Duplicate:
			out.Duplicates++
		default:
			out.Imported++
		}
		if res.CreatedEnvelope {
			out.EnvelopesCreated++
		}
	}
	s.Logger.Info("notes imported", "path", input.Path, "notes", out.Notes, "imported", out.Imported)
	return out, nil
}

func textNotes(src []byte) []string {
	var notes []string
	sc := bufio.NewScanner(bytes.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), MaxImportFileSize)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			notes = append(notes, line)
		}
	}
	return notes
}

// MarkdownNotes returns the plain text of each paragraph and list item in
// src, in document order. Inline markup is dropped; headings, code blocks
// and HTML are skipped.
func MarkdownNotes(src []byte) []string {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var notes []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindHeading, ast.KindFencedCodeBlock, ast.KindCodeBlock, ast.KindHTMLBlock:
			return ast.WalkSkipChildren, nil
		case ast.KindParagraph, ast.KindTextBlock:
			if note := strings.Join(strings.Fields(inlineText(n, src)), " "); note != "" {
				notes = append(notes, note)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return notes
}

func inlineText(block ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(block, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.AutoLink:
			b.Write(v.Label(src))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
