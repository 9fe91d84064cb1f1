package generator

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"unicode"
)

// ModelMeta describes one model struct and its table.
type ModelMeta struct {
	PackageName      string
	ModelName        string
	TableName        string
	Fields           []FieldMeta
	PK               *FieldMeta
	SchemaStructName string // e.g. userSchema
	ColumnsTypeName  string // e.g. userColumns
}

// FieldMeta describes one column-mapped field.
type FieldMeta struct {
	FieldName string
	Column    string
	Type      string
	IsPK      bool
	AutoIncr  bool
}

// ParseModels returns every struct in dir that has at least one db tag.
// Generated and test files are skipped.
func ParseModels(dir string) ([]ModelMeta, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	fset := token.NewFileSet()
	var models []ModelMeta
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") ||
			strings.HasSuffix(name, "_gen.go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		file, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.SkipObjectResolution)
		if err != nil {
			return nil, err
		}
		found, err := parseFile(file)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		models = append(models, found...)
	}

	sort.Slice(models, func(i, j int) bool { return models[i].ModelName < models[j].ModelName })
	return models, nil
}

func parseFile(file *ast.File) ([]ModelMeta, error) {
	var models []ModelMeta
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts := spec.(*ast.TypeSpec)
			st, ok := ts.Type.(*ast.StructType)
			if !ok || !ts.Name.IsExported() {
				continue
			}
			model, tagged, err := parseStruct(file.Name.Name, ts.Name.Name, st)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", ts.Name.Name, err)
			}
			if tagged {
				models = append(models, model)
			}
		}
	}
	return models, nil
}

func parseStruct(pkg, modelName string, st *ast.StructType) (ModelMeta, bool, error) {
	lower := strings.ToLower(modelName[:1]) + modelName[1:]
	model := ModelMeta{
		PackageName:      pkg,
		ModelName:        modelName,
		TableName:        toSnakeCase(modelName) + "s",
		SchemaStructName: lower + "Schema",
		ColumnsTypeName:  lower + "Columns",
	}

	tagged := false
	for _, field := range st.Fields.List {
		if len(field.Names) == 0 || field.Tag == nil {
			continue
		}
		tag := reflect.StructTag(strings.Trim(field.Tag.Value, "`")).Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		tagged = true

		ident, ok := field.Type.(*ast.Ident)
		if !ok {
			return model, false, fmt.Errorf("field %s: unsupported type %s", field.Names[0].Name, exprString(field.Type))
		}
		meta := FieldMeta{
			FieldName: field.Names[0].Name,
			Column:    toSnakeCase(field.Names[0].Name),
			Type:      ident.Name,
		}
		if _, ok := descriptors[meta.Type]; !ok {
			return model, false, fmt.Errorf("field %s: unsupported type %s", meta.FieldName, meta.Type)
		}
		parseTag(tag, &meta, &model)

		model.Fields = append(model.Fields, meta)
	}
	if !tagged {
		return model, false, nil
	}

	for i := range model.Fields {
		if model.Fields[i].IsPK {
			if model.PK != nil {
				return model, false, fmt.Errorf("more than one primaryKey field")
			}
			model.PK = &model.Fields[i]
		}
	}
	if model.PK == nil {
		return model, false, fmt.Errorf("no primaryKey field")
	}
	if model.PK.AutoIncr && !isInteger(model.PK.Type) {
		return model, false, fmt.Errorf("autoIncrement key %s must be an integer", model.PK.FieldName)
	}
	return model, true, nil
}

// parseTag reads `db:"name,primaryKey,autoIncrement"`. The first element
// is the column unless it is a key:value pair; ";" separates like ",".
func parseTag(tag string, meta *FieldMeta, model *ModelMeta) {
	parts := strings.Split(strings.ReplaceAll(tag, ";", ","), ",")
	if parts[0] != "" && !strings.Contains(parts[0], ":") {
		meta.Column = parts[0]
	}
	for _, part := range parts {
		key, value, _ := strings.Cut(part, ":")
		switch key {
		case "primaryKey":
			meta.IsPK = true
		case "autoIncrement":
			meta.AutoIncr = true
		case "column":
			if value != "" {
				meta.Column = value
			}
		case "table":
			if value != "" {
				model.TableName = value
			}
		}
	}
}

// toSnakeCase keeps acronyms together: UserID -> user_id, HTTPServer -> http_server.
func toSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func exprString(e ast.Expr) string {
	switch t := e.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.SelectorExpr:
		return exprString(t.X) + "." + t.Sel.Name
	case *ast.StarExpr:
		return "*" + exprString(t.X)
	case *ast.ArrayType:
		return "[]" + exprString(t.Elt)
	}
	return fmt.Sprintf("%T", e)
}
