package services

import (
	"html/template"
	"strings"

	"github.com/codexx/academy/backend/internal/views"
)

// cvPage is the single template behind both the on-screen preview and the
// PDF export. PDFMode suppresses the preview-only chrome (toolbar, hints).
type cvPage struct {
	Data     *views.Portfolio
	Services []views.Service
	Theme    string
	PDFMode  bool
}

var cvTemplate = template.Must(template.New("cv").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Data.Name}} - CV</title>
<style>
  body { font-family: 'Helvetica Neue', Arial, sans-serif; margin: 40px; color: #222; }
  h1 { margin-bottom: 0; }
  .subtitle { color: #8a6d1d; font-size: 1.1em; margin-top: 4px; }
  .section { margin-top: 28px; }
  .section h2 { border-bottom: 2px solid #c9a227; padding-bottom: 4px; font-size: 1.05em; text-transform: uppercase; letter-spacing: .08em; }
  .skill { margin: 6px 0; }
  .skill .bar { background: #eee; height: 8px; border-radius: 4px; overflow: hidden; }
  .skill .fill { background: #c9a227; height: 8px; }
  .project, .service { margin: 10px 0; }
  .muted { color: #777; font-size: .9em; }
  .toolbar { background: #222; color: #fff; padding: 10px 16px; border-radius: 6px; margin-bottom: 24px; }
</style>
</head>
<body>
{{if not .PDFMode}}
<div class="toolbar">CV preview. Use the download button to export this page as a PDF.</div>
{{end}}
<h1>{{.Data.Name}}</h1>
<div class="subtitle">{{.Data.Title}}</div>
{{if .Data.About}}
<div class="section">
  <h2>About</h2>
  <p>{{.Data.About}}</p>
</div>
{{end}}
{{if .Data.Skills}}
<div class="section">
  <h2>Skills</h2>
  {{range .Data.Skills}}
  <div class="skill">
    <div>{{.Name}}</div>
    <div class="bar"><div class="fill" style="width: {{.Level}}%"></div></div>
  </div>
  {{end}}
</div>
{{end}}
{{if .Services}}
<div class="section">
  <h2>Services</h2>
  {{range .Services}}
  <div class="service">
    <strong>{{.Title}}</strong>
    {{if .ShortDescription}}<div>{{.ShortDescription}}</div>{{end}}
    {{if .Duration}}<div class="muted">{{.Duration}}</div>{{end}}
  </div>
  {{end}}
</div>
{{end}}
{{if .Data.Projects}}
<div class="section">
  <h2>Projects</h2>
  {{range .Data.Projects}}
  <div class="project">
    <strong>{{.Title}}</strong>
    {{if .ShortDescription}}<div>{{.ShortDescription}}</div>{{end}}
    {{if .Technologies}}<div class="muted">{{range $i, $t := .Technologies}}{{if $i}}, {{end}}{{$t}}{{end}}</div>{{end}}
  </div>
  {{end}}
</div>
{{end}}
</body>
</html>
`))

// RenderCV produces the CV HTML document for a portfolio. Only active
// services appear, matching the preview page.
func RenderCV(p *views.Portfolio, pdfMode bool) (string, error) {
	var sb strings.Builder
	err := cvTemplate.Execute(&sb, cvPage{
		Data:     p,
		Services: p.ActiveServices(),
		Theme:    p.Theme(),
		PDFMode:  pdfMode,
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}
