package generator

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"
)

type descriptor struct {
	Type        string
	Constructor string
}

// descriptors maps a Go field type to its field package column type.
var descriptors = map[string]descriptor{
	"string": {"field.String", "field.NewString"},
}

func init() {
	for _, t := range []string{
		"int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64",
		"float32", "float64",
	} {
		descriptors[t] = descriptor{"field.Number[" + t + "]", "field.NewNumber[" + t + "]"}
	}
}

func isInteger(t string) bool {
	return strings.HasPrefix(t, "int") || strings.HasPrefix(t, "uint")
}

var funcs = template.FuncMap{
	"descriptor": func(t string) descriptor { return descriptors[t] },
	"strings": func(fields []FieldMeta) string {
		cols := make([]string, len(fields))
		for i, f := range fields {
			cols[i] = strconv.Quote(f.Column)
		}
		return "[]string{" + strings.Join(cols, ", ") + "}"
	},
	"values": func(fields []FieldMeta) string {
		vals := make([]string, len(fields))
		for i, f := range fields {
			vals[i] = "m." + f.FieldName
		}
		return "[]any{" + strings.Join(vals, ", ") + "}"
	},
	"quote": strconv.Quote,
}

var fileTemplate = template.Must(template.New("schema").Funcs(funcs).Parse(`// Code generated by schemagen. DO NOT EDIT.

package {{.PackageName}}

import (
	"{{.Module}}/clause"
	"{{.Module}}/field"
	"{{.Module}}/store"
)

type {{.ColumnsTypeName}} struct {
{{- range .Fields}}
	{{.FieldName}} {{(descriptor .Type).Type}}
{{- end}}
}

// {{.ModelName}}Columns holds typed descriptors for the columns of {{.TableName}}.
var {{.ModelName}}Columns = {{.ColumnsTypeName}}{
{{- range .Fields}}
	{{.FieldName}}: {{(descriptor .Type).Constructor}}({{quote .Column}}),
{{- end}}
}

type {{.SchemaStructName}} struct{}

func ({{.SchemaStructName}}) TableName() string { return {{quote .TableName}} }

func ({{.SchemaStructName}}) SelectColumns() []string {
	return {{strings .Fields}}
}

func ({{.SchemaStructName}}) InsertRow(m *{{.ModelName}}) ([]string, []any) {
{{- if .PK.AutoIncr}}
	if m.{{.PK.FieldName}} != 0 {
		return {{strings .Fields}}, {{values .Fields}}
	}
	return {{strings .NonKey}}, {{values .NonKey}}
{{- else}}
	return {{strings .Fields}}, {{values .Fields}}
{{- end}}
}

func ({{.SchemaStructName}}) UpdateMap(m *{{.ModelName}}) map[string]any {
	return map[string]any{
{{- range .NonKey}}
		{{quote .Column}}: m.{{.FieldName}},
{{- end}}
	}
}

func ({{.SchemaStructName}}) PK(m *{{.ModelName}}) store.PK {
	var val any
	if m != nil {
		val = m.{{.PK.FieldName}}
	}
	return store.PK{Column: clause.Column{Name: {{quote .PK.Column}}}, Value: val}
}
{{if eq .PK.Type "int64"}}
func ({{.SchemaStructName}}) SetPK(m *{{.ModelName}}, val int64) { m.{{.PK.FieldName}} = val }
{{- else if .IntegerPK}}
func ({{.SchemaStructName}}) SetPK(m *{{.ModelName}}, val int64) { m.{{.PK.FieldName}} = {{.PK.Type}}(val) }
{{- else}}
func ({{.SchemaStructName}}) SetPK(*{{.ModelName}}, int64) {}
{{- end}}

func ({{.SchemaStructName}}) AutoIncrement() bool { return {{.PK.AutoIncr}} }

func init() {
	store.RegisterSchema[{{.ModelName}}]({{.SchemaStructName}}{})
}
`))

type fileData struct {
	ModelMeta
	Module string
}

func (d fileData) NonKey() []FieldMeta {
	out := make([]FieldMeta, 0, len(d.Fields))
	for _, f := range d.Fields {
		if !f.IsPK {
			out = append(out, f)
		}
	}
	return out
}

func (d fileData) IntegerPK() bool { return isInteger(d.PK.Type) }

// Render returns the formatted schema source for m. module is the import
// path of this repository, used to reach clause, field and store.
func Render(m ModelMeta, module string) ([]byte, error) {
	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, fileData{ModelMeta: m, Module: module}); err != nil {
		return nil, fmt.Errorf("render %s: %w", m.ModelName, err)
	}
	src, err := imports.Process(FileName(m), buf.Bytes(), nil)
	if err != nil {
		return nil, fmt.Errorf("format %s: %w\n%s", m.ModelName, err, buf.Bytes())
	}
	return src, nil
}

// FileName is the generated file for m, e.g. user_schema_gen.go.
func FileName(m ModelMeta) string {
	return toSnakeCase(m.ModelName) + "_schema_gen.go"
}

// GenerateFile renders m into outDir and returns the written path.
func GenerateFile(m ModelMeta, module, outDir string) (string, error) {
	src, err := Render(m, module)
	if err != nil {
		return "", err
	}
	path := filepath.Join(outDir, FileName(m))
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
