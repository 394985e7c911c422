// package formatter provides functions to export preset data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"alpencams/internal/models"
)

// ExportToCSV converts a preset's cameras to CSV format with columns: ID, Name, Provider, URL, Latitude, Longitude
func ExportToCSV(preset models.Preset) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Name", "Provider", "URL", "Latitude", "Longitude"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, cam := range preset.Cams {
		record := []string{
			strconv.Itoa(cam.ID),
			cam.Name,
			cam.Provider,
			cam.URL,
			strconv.FormatFloat(cam.Latitude, 'f', -1, 64),
			strconv.FormatFloat(cam.Longitude, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a preset to Markdown format with linked camera names
func ExportToMarkdown(preset models.Preset) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", preset.Name))
	buf.WriteString(fmt.Sprintf("**Cameras**: %d\n\n", len(preset.Cams)))

	buf.WriteString("## Cameras\n\n")
	for i, cam := range preset.Cams {
		providerPart := ""
		if cam.Provider != "" {
			providerPart = fmt.Sprintf(" (%s)", cam.Provider)
		}
		if cam.URL != "" {
			buf.WriteString(fmt.Sprintf("%d. [%s](%s)%s\n", i+1, cam.Name, cam.URL, providerPart))
		} else {
			buf.WriteString(fmt.Sprintf("%d. %s%s\n", i+1, cam.Name, providerPart))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a preset to plain text format
func ExportToText(preset models.Preset) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Preset: %s\n", preset.Name))
	buf.WriteString(fmt.Sprintf("Cameras: %d\n\n", len(preset.Cams)))

	for i, cam := range preset.Cams {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, cam.Name))
	}

	return buf.Bytes(), nil
}

// WriteCSVExport exports a preset to a CSV file.
//
// Defaults to {preset.ID}_cams.csv as the filename.
func WriteCSVExport(preset models.Preset, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_cams.csv", preset.ID)
	}

	csvData, err := ExportToCSV(preset)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(filepath, csvData, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return filepath, nil
}

// WriteMarkdownExport exports a preset to a Markdown file.
//
// Defaults to {preset.ID}.md as the filename.
func WriteMarkdownExport(preset models.Preset, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s.md", preset.ID)
	}

	mdData, err := ExportToMarkdown(preset)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	if err := os.WriteFile(filepath, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return filepath, nil
}

// WriteTextExport exports a preset to a plain text file.
//
// Defaults to {preset.ID}_cams.txt as the filename.
func WriteTextExport(preset models.Preset, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_cams.txt", preset.ID)
	}

	textData, err := ExportToText(preset)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
