package interactive

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/matzehuels/starbridge/pkg/ir"
)

// hoverFields is the template input built from one metadata record.
type hoverFields struct {
	Type          string
	Name          string
	Bayer         string
	Constellation string
	ObjectType    string
	IAU           string
	Mag           float64
	HasMag        bool
	RA, Dec       float64
	HasCoords     bool
}

func fieldsOf(rec ir.Record) hoverFields {
	f := hoverFields{Type: rec.Type()}
	f.Name, _ = rec.String(ir.FieldName)
	f.Bayer, _ = rec.String(ir.FieldBayer)
	f.Constellation, _ = rec.String(ir.FieldConstellation)
	f.ObjectType, _ = rec.String(ir.FieldObjectType)
	f.IAU, _ = rec.String(ir.FieldIAU)
	f.Mag, f.HasMag = rec.Float(ir.FieldMagnitude)
	ra, okRA := rec.Float(ir.FieldRA)
	dec, okDec := rec.Float(ir.FieldDec)
	f.RA, f.Dec, f.HasCoords = ra, dec, okRA && okDec
	return f
}

const hoverCoords = `{{define "coords"}}{{if .HasCoords}}RA: {{printf "%.4f" (hours .RA)}}h  DEC: {{printf "%.4f" .Dec}}°{{end}}{{end}}`

// hoverSources holds one template per metadata type. Lines are separated by
// newlines; blank lines are removed after execution.
var hoverSources = map[string]string{
	"star": `{{.Name}}
{{.Bayer}}
{{if .HasMag}}Magnitude: {{printf "%.2f" .Mag}}{{end}}
{{template "coords" .}}
{{with .Constellation}}Constellation: {{.}}{{end}}`,

	"dso": `{{or .Name "DSO"}}
{{with .ObjectType}}Type: {{.}}{{end}}
{{if .HasMag}}Magnitude: {{printf "%.1f" .Mag}}{{end}}
{{template "coords" .}}`,

	"planet": `{{or .Name "Planet"}}
{{if .HasMag}}Magnitude: {{printf "%.2f" .Mag}}{{end}}
{{template "coords" .}}`,

	"constellation": `{{.Name}}
{{with .IAU}}IAU: {{.}}{{end}}`,

	"": `{{.Name}}
{{template "coords" .}}`,
}

var hoverFuncs = template.FuncMap{
	"hours": func(deg float64) float64 { return deg / 15 },
}

// hoverTemplates is built once and only read afterwards; templates are safe
// for concurrent execution.
var hoverTemplates = func() map[string]*template.Template {
	out := make(map[string]*template.Template, len(hoverSources))
	for typ, src := range hoverSources {
		t := template.Must(template.New(typ).Funcs(hoverFuncs).Parse(hoverCoords))
		out[typ] = template.Must(t.Parse(src))
	}
	return out
}()

// Hover renders the hover text for rec. Unknown types use the generic
// template; missing fields are omitted. It never fails: if a template
// errors, the generic template and then the bare name are used.
func Hover(rec ir.Record) string {
	f := fieldsOf(rec)
	tmpl, ok := hoverTemplates[f.Type]
	if !ok {
		tmpl = hoverTemplates[""]
	}
	if s, err := execute(tmpl, f); err == nil {
		return s
	}
	if s, err := execute(hoverTemplates[""], f); err == nil {
		return s
	}
	return f.Name
}

func execute(t *template.Template, f hoverFields) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, f); err != nil {
		return "", err
	}
	lines := strings.Split(buf.String(), "\n")
	kept := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n"), nil
}
