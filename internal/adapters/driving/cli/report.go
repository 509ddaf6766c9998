package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/custodia-labs/docsight/internal/catalog"
	"github.com/custodia-labs/docsight/internal/core/domain"
)

const barWidth = 24

// reportStyles holds the lipgloss styles of terminal reports. The zero
// value renders plain text.
type reportStyles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	winner  lipgloss.Style
	bar     lipgloss.Style
	good    lipgloss.Style
	warning lipgloss.Style
}

func styledReport() reportStyles {
	return reportStyles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		winner:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A6E3A1")),
		bar:     lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")),
		good:    lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
	}
}

// stylesFor returns terminal styles when w is a TTY and plain styles otherwise.
func stylesFor(w io.Writer) reportStyles {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return styledReport()
	}
	return reportStyles{}
}

// renderClassification writes a classification report followed by the
// display fields and suggested queries of the detected type.
func renderClassification(w io.Writer, result *domain.ClassificationResult, st reportStyles) {
	fmt.Fprintln(w, st.title.Render("Classification Report"))
	fmt.Fprintf(w, "%s %s\n", st.label.Render("Document type:"), st.winner.Render(result.DocumentType))
	fmt.Fprintf(w, "%s %.1f%%\n", st.label.Render("Confidence:   "), result.ConfidenceScore*100)
	if result.Description != "" {
		fmt.Fprintf(w, "%s %s\n", st.label.Render("Description:  "), result.Description)
	}
	fmt.Fprintf(w, "%s %d characters, %d images\n", st.label.Render("Analyzed:     "), result.TextLength, result.ImageCount)

	fmt.Fprintln(w)
	fmt.Fprintln(w, st.title.Render("Probabilities"))
	for _, row := range result.Ranked() {
		name := fmt.Sprintf("%-18s", row.Name)
		if row.Name == result.DocumentType {
			name = st.winner.Render(name)
		}
		bar := st.bar.Render(domain.ProbabilityBar(row.Probability, barWidth))
		fmt.Fprintf(w, "  %s %s %5.1f%%\n", name, bar, row.Probability*100)
	}

	profile, ok := catalog.DocumentType(result.DocumentType)
	if !ok {
		return
	}
	if len(profile.Fields) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %s\n", st.label.Render("Key fields:"), strings.Join(profile.Fields, ", "))
	}
	if len(profile.SuggestedQueries) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, st.title.Render("Suggested queries"))
		for _, q := range profile.SuggestedQueries {
			fmt.Fprintf(w, "  %s %s\n", st.muted.Render("-"), q)
		}
	}
}

// renderResult writes a query result: summary, structured slots and evidence.
func renderResult(w io.Writer, result *domain.FinalResult, st reportStyles) {
	fmt.Fprintln(w, st.title.Render("Answer"))
	fmt.Fprintln(w, result.Summary)
	fmt.Fprintln(w)

	fmt.Fprintln(w, st.title.Render("Fields"))
	slots := make([]string, 0, len(result.StructuredData.Fields))
	for slot := range result.StructuredData.Fields {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	for _, slot := range slots {
		value := result.StructuredData.Fields[slot]
		if value == domain.NotFound {
			value = st.muted.Render(value)
		}
		fmt.Fprintf(w, "  %-22s %s\n", slot, value)
	}

	consistency := st.good.Render("consistent")
	if !result.StructuredData.ConsistencyCheck {
		consistency = st.warning.Render("inconsistencies detected")
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", st.label.Render("Evidence pages:"), joinInts(result.StructuredData.EvidencePages))
	if len(result.StructuredData.VisualElements) > 0 {
		fmt.Fprintf(w, "%s %s\n", st.label.Render("Visual:        "), strings.Join(result.StructuredData.VisualElements, "; "))
	}
	fmt.Fprintf(w, "%s %s\n", st.label.Render("Consistency:   "), consistency)
	fmt.Fprintf(w, "%s %.2f\n", st.label.Render("Confidence:    "), result.ConfidenceScore)
}

func joinInts(values []int) string {
	if len(values) == 0 {
		return "none"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
