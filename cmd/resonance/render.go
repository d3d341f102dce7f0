package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/resonance/internal/library"
	"github.com/llehouerou/resonance/internal/recommend"
)

var (
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	scoreStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	externalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("34")) // green
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

const noResults = "No recommendations."

func renderTracks(recs []recommend.Recommendation[recommend.Track]) string {
	if len(recs) == 0 {
		return dimStyle.Render(noResults) + "\n"
	}
	var b strings.Builder
	for i, r := range recs {
		t := r.Item
		line := titleStyle.Render(t.Title)
		if len(t.Artists) > 0 {
			line += " - " + strings.Join(t.Artists, ", ")
		}
		if detail := albumDetail(t.Album, t.Year); detail != "" {
			line += " " + dimStyle.Render(detail)
		}
		writeEntry(&b, i, r.Score, t.ID, line, r.Source, r.Reasons)
	}
	return b.String()
}

func renderAlbums(recs []recommend.Recommendation[recommend.Album]) string {
	if len(recs) == 0 {
		return dimStyle.Render(noResults) + "\n"
	}
	var b strings.Builder
	for i, r := range recs {
		a := r.Item
		line := titleStyle.Render(a.Title)
		if len(a.Artists) > 0 {
			line += " - " + strings.Join(a.Artists, ", ")
		}
		if a.Year > 0 {
			line += " " + dimStyle.Render("("+strconv.Itoa(a.Year)+")")
		}
		writeEntry(&b, i, r.Score, "", line, r.Source, r.Reasons)
	}
	return b.String()
}

func renderArtists(recs []recommend.Recommendation[recommend.Artist]) string {
	if len(recs) == 0 {
		return dimStyle.Render(noResults) + "\n"
	}
	var b strings.Builder
	for i, r := range recs {
		line := titleStyle.Render(r.Item.Name)
		if len(r.Item.Genres) > 0 {
			line += " " + dimStyle.Render(strings.Join(r.Item.Genres, ", "))
		}
		writeEntry(&b, i, r.Score, "", line, r.Source, r.Reasons)
	}
	return b.String()
}

func renderSmart(res recommend.SmartResult) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Tracks") + "\n")
	b.WriteString(renderTracks(res.Tracks))
	b.WriteString("\n" + headerStyle.Render("Albums") + "\n")
	b.WriteString(renderAlbums(res.Albums))
	b.WriteString("\n" + headerStyle.Render("Artists") + "\n")
	b.WriteString(renderArtists(res.Artists))
	return b.String()
}

func writeEntry(b *strings.Builder, i int, score float64, id, line string, src recommend.Source, reasons []recommend.Reason) {
	fmt.Fprintf(b, "%3d. %s  %s", i+1, scoreStyle.Render(fmt.Sprintf("%.2f", score)), line)
	if id != "" {
		b.WriteString(" " + dimStyle.Render("#"+id))
	}
	if src == recommend.SourceExternal {
		b.WriteString(" " + externalStyle.Render("["+src.String()+"]"))
	}
	b.WriteString("\n")
	for _, r := range reasons {
		b.WriteString("       " + dimStyle.Render(r.Description) + "\n")
	}
}

func albumDetail(album string, year int) string {
	switch {
	case album != "" && year > 0:
		return fmt.Sprintf("(%s, %d)", album, year)
	case album != "":
		return "(" + album + ")"
	case year > 0:
		return "(" + strconv.Itoa(year) + ")"
	}
	return ""
}

// describeTrack is the one-line form used in headers and search results.
func describeTrack(t *library.Track) string {
	s := t.Title
	if t.Artist != "" {
		s += " - " + t.Artist
	}
	if detail := albumDetail(t.Album, t.Year); detail != "" {
		s += " " + detail
	}
	return s
}
