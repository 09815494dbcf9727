package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// Table is a display table. When Index is set the first cell of each row
// is a row label and renders as a header cell.
type Table struct {
	Classes []string
	Header  []string
	Rows    [][]string
	Index   bool
}

var tableTmpl = template.Must(template.New("table").Parse(`<table border="0" class="{{.Class}}">
  <thead>
    <tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr>
  </thead>
  <tbody>
{{- range .Rows}}
    <tr>{{range $i, $c := .}}{{if and (eq $i 0) $.Index}}<th>{{$c}}</th>{{else}}<td>{{$c}}</td>{{end}}{{end}}</tr>
{{- end}}
  </tbody>
</table>`))

// Markup renders the table as an HTML fragment. Cell values are escaped.
func (t *Table) Markup() (template.HTML, error) {
	var buf bytes.Buffer
	err := tableTmpl.Execute(&buf, map[string]any{
		"Class":  strings.Join(append([]string{"dataframe"}, t.Classes...), " "),
		"Header": t.Header,
		"Rows":   t.Rows,
		"Index":  t.Index,
	})
	if err != nil {
		return "", fmt.Errorf("rendering table: %w", err)
	}
	return template.HTML(buf.String()), nil
}
