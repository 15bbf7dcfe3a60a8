package services

import (
	"fmt"
	"html"
	"strings"
)

// ImportReport summarizes one processed CSV import.
type ImportReport struct {
	Filename string
	Created  int
	Errors   []string
}

// RenderErrorSection renders the skipped-rows section HTML.
func RenderErrorSection(errors []string) string {
	if len(errors) == 0 {
		return ""
	}

	var errorItems strings.Builder
	for _, e := range errors {
		errorItems.WriteString(fmt.Sprintf("<li>%s</li>", html.EscapeString(e)))
	}

	return fmt.Sprintf(`
		<div style="background-color: #fff4f4; border-left: 5px solid #d13438; padding: 15px; margin-bottom: 20px;">
			<h3 style="color: #d13438; margin-top: 0; font-size: 18px;">⚠️ Some rows were skipped</h3>
			<ul style="margin-bottom: 0; padding-left: 20px;">
				%s
			</ul>
		</div>
	`, errorItems.String())
}

// RenderImportReport renders the full HTML body for an import report email.
func RenderImportReport(report ImportReport) string {
	title := "Import Finished"
	color := "#0078d4"
	if report.Created == 0 {
		title = "Import Failed"
		color = "#d13438"
	}

	return fmt.Sprintf(`
		<html>
		<body style="font-family: 'Segoe UI', sans-serif; color: #333; line-height: 1.6; background-color: #f4f4f4; margin: 0; padding: 20px;">
			<div style="max-width: 600px; margin: 0 auto; background: white; border-radius: 8px; overflow: hidden; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
				<div style="background-color: %s; padding: 20px; text-align: center; color: white;">
					<h2 style="margin: 0;">%s</h2>
				</div>
				<div style="padding: 20px;">
					<p><strong>%s</strong>: %d transaction(s) imported, %d row(s) skipped.</p>
					%s
				</div>
			</div>
		</body>
		</html>
	`, color, title, html.EscapeString(report.Filename), report.Created, len(report.Errors), RenderErrorSection(report.Errors))
}

// RenderImportReportText renders the plain-text alternative of the report.
func RenderImportReportText(report ImportReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d transaction(s) imported, %d row(s) skipped.\n", report.Filename, report.Created, len(report.Errors))
	if len(report.Errors) > 0 {
		b.WriteString("\nSkipped rows:\n")
		for _, e := range report.Errors {
			fmt.Fprintf(&b, "- %s\n", e)
		}
	}
	return b.String()
}
