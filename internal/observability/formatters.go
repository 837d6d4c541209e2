// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/cvmaker/internal/auth"
	"github.com/jonathan/cvmaker/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintResume outputs a summary of a resume and the template it renders with.
func (p *Printer) PrintResume(data *types.ResumeData, template types.TemplateVariant) {
	if data == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:      %s\n", data.FullName()))
	sb.WriteString(fmt.Sprintf("Title:     %s\n", data.JobTitle))
	sb.WriteString(fmt.Sprintf("Template:  %s\n", template.Resolve()))
	if data.Contact.Email != "" {
		sb.WriteString(fmt.Sprintf("Email:     %s\n", data.Contact.Email))
	}
	sb.WriteString("\n")

	if len(data.WorkExperience) > 0 {
		sb.WriteString("Experience:\n")
		count := min(len(data.WorkExperience), maxItemsToShow)
		for i := 0; i < count; i++ {
			w := data.WorkExperience[i]
			sb.WriteString(fmt.Sprintf("  • %s @ %s", w.JobTitle, w.Company))
			if len(w.Responsibilities) > 0 {
				sb.WriteString(fmt.Sprintf(" (%d bullets)", len(w.Responsibilities)))
			}
			sb.WriteString("\n")
		}
		if len(data.WorkExperience) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(data.WorkExperience)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Education: %d  Skills: %d  Languages: %d\n",
		len(data.Education), len(data.Skills), len(data.Languages)))
	if data.ProfilePicture != nil {
		sb.WriteString("Picture:   yes\n")
	}

	p.printBox("RESUME", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRecords outputs the persisted resumes of a user, newest first.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintRecords(records []types.ResumeRecord) {
	if len(records) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "NO SAVED RESUMES")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total saved: %d\n\n", len(records)))
	for i, r := range records {
		sb.WriteString(fmt.Sprintf("#%-6d %-4s updated %s", r.ID, r.Template(), r.UpdatedAt.Format(time.DateTime)))
		if i == 0 {
			sb.WriteString("  *")
		}
		if i < len(records)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("SAVED RESUMES", sb.String())
}

// PrintIdentity outputs what a session token says about its holder.
func (p *Printer) PrintIdentity(id *auth.Identity, verified bool) {
	if id == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Profile:   %s\n", orDash(id.ProfileID)))
	user := "-"
	if id.UserID != uuid.Nil {
		user = id.UserID.String()
	}
	sb.WriteString(fmt.Sprintf("User:      %s\n", user))
	sb.WriteString(fmt.Sprintf("Email:     %s\n", orDash(id.Email)))
	sb.WriteString(fmt.Sprintf("Roles:     %s\n", orDash(strings.Join(id.Roles, ", "))))
	if verified {
		sb.WriteString("Signature: verified")
	} else {
		sb.WriteString("Signature: not checked")
	}

	p.printBox("SESSION TOKEN", sb.String())
}

// PrintExport outputs the result of an export run.
func (p *Printer) PrintExport(mode, path string, size int, saved bool) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Mode:   %s\n", mode))
	sb.WriteString(fmt.Sprintf("Output: %s\n", path))
	sb.WriteString(fmt.Sprintf("Size:   %s", humanSize(size)))
	if saved {
		sb.WriteString("\nSaved:  yes")
	}
	p.printBox("PDF EXPORTED", sb.String())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func humanSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
