package report

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/sweeparr/sweeparr/internal/models"
)

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Unwatched {{.TypeName}} Report</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        h1 { color: #333; }
        table { border-collapse: collapse; width: 100%; margin-top: 20px; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f2f2f2; }
        tr:nth-child(even) { background-color: #f9f9f9; }
        tr:hover { background-color: #f5f5f5; }
        .summary { margin-bottom: 20px; }
    </style>
</head>
<body>
    <h1>Unwatched {{.TypeName}} Report</h1>
    <div class="summary">
        <p>Report generated on: {{.Report.GeneratedAt.Format "2006-01-02 15:04:05"}}</p>
        <p>Found <strong>{{.Report.UnwatchedCount}}</strong> unwatched {{.TypeNameLower}} (cutoff: {{.Report.Months}} months).</p>
        <p>Total space that could be freed: <strong>{{.Report.TotalHuman}}</strong></p>
    </div>
    <table>
        <tr>
            <th>ID</th>
            <th>Title</th>
            <th>Size</th>
            <th>Path</th>
            <th>Source</th>
            <th>Last Watched</th>
        </tr>
{{- range .Report.Entries}}
        <tr>
            <td>{{.ID}}</td>
            <td>{{.Title}}</td>
            <td>{{.SizeHuman}}</td>
            <td>{{.Path}}</td>
            <td>{{.Source}}</td>
            <td>{{if .LastWatchedAt}}{{.LastWatchedAt.Format "2006-01-02"}}{{else}}never{{end}}</td>
        </tr>
{{- end}}
    </table>
</body>
</html>
`

var htmlTmpl = template.Must(template.New("report").Parse(htmlTemplate))

type htmlContext struct {
	Report        *models.Report
	TypeName      string
	TypeNameLower string
}

// renderHTML produces the browsable table view of the report
func renderHTML(r *models.Report) ([]byte, error) {
	typeName := "Movies"
	if r.Mode == models.ModeSonarr {
		typeName = "Series"
	}

	var buf bytes.Buffer
	err := htmlTmpl.Execute(&buf, htmlContext{
		Report:        r,
		TypeName:      typeName,
		TypeNameLower: strings.ToLower(typeName),
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
