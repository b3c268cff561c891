package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	imageStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33"))

	attributionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Margin(1, 0, 0, 0)
)

// renderImages draws records from index `from` onwards.
func renderImages(images []ImageData, from int) string {
	var b strings.Builder
	for i := from; i < len(images); i++ {
		img := images[i]
		body := fmt.Sprintf("%d. %s\n%s\n%s",
			i+1,
			img.AltText,
			urlStyle.Render(img.DisplayUrl),
			attributionStyle.Render("Photo by "+img.Attribution),
		)
		b.WriteString(imageStyle.Render(body))
		b.WriteString("\n")
	}
	return b.String()
}

func renderStatus(st State) string {
	line := fmt.Sprintf("Page %d | Total Images: %d | Has More: %t", st.Page, len(st.Results), st.HasMore)
	if st.Loading {
		line += " | loading..."
	}
	return statusStyle.Render(line)
}

func renderState(st State) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Unsplash Image Gallery: " + st.Query))
	b.WriteString("\n")
	if st.Error != "" {
		b.WriteString(errorStyle.Render(st.Error))
		b.WriteString("\n")
	}
	b.WriteString(renderImages(st.Results, 0))
	b.WriteString(renderStatus(st))
	b.WriteString("\n")
	return b.String()
}
