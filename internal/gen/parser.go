package gen

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"strings"

	"github.com/misokaze/relgen/internal/naming"
)

// FieldInfo holds parsed metadata for one struct field.
type FieldInfo struct {
	Name       string // Go field name, e.g. "ID"
	Column     string // DB column name from `db:"id"` tag
	GoType     string // Go type as string, e.g. "int", "string", "time.Time"
	PrimaryKey bool   // true if tag contains "primaryKey"
	CreatedAt  bool   // true if tag contains "createdAt" or field is CreatedAt by convention
	UpdatedAt  bool   // true if tag contains "updatedAt" or field is UpdatedAt by convention
}

// Relation holds parsed metadata for one `rel` tag.
type Relation struct {
	FieldName        string // Go field name, e.g. "Authors"
	TargetType       string // related struct type, e.g. "Author"
	TargetImportPath string // non-empty for cross-package targets
	RelType          string // "has_many", "has_one", "belongs_to", or "many_to_many"
	ForeignKey       string // e.g. "post_id"
	JoinTable        string // many_to_many only, e.g. "post_authors"
	References       string // many_to_many only, e.g. "author_id"
	IsPointer        bool   // true if the field type is a pointer
}

// StructInfo holds parsed metadata for the target struct.
type StructInfo struct {
	Name      string            // Go struct name, e.g. "Post"
	Package   string            // Package name, e.g. "model"
	Fields    []FieldInfo       // Non-skipped db fields
	Relations []Relation        // rel-tagged fields
	TableName string            // Set by the caller (flag or config; defaults applied there)
	Imports   map[string]string // source file imports, qualifier → path
}

// PrimaryKeyField returns the primary key field, or an error if none or
// multiple are defined.
func (s *StructInfo) PrimaryKeyField() (*FieldInfo, error) {
	var pk *FieldInfo
	for i := range s.Fields {
		if s.Fields[i].PrimaryKey {
			if pk != nil {
				return nil, fmt.Errorf("multiple primary keys: %s and %s", pk.Name, s.Fields[i].Name)
			}
			pk = &s.Fields[i]
		}
	}
	if pk == nil {
		return nil, fmt.Errorf("no primary key defined for %s", s.Name)
	}
	return pk, nil
}

// Parse reads the Go file at path and returns StructInfo for every struct
// that has at least one db field. Relation tags are resolved against the
// file's imports; omitted relation options fall back to naming conventions.
func Parse(filePath string) ([]*StructInfo, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filePath, nil, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parse file: %w", err)
	}

	pkg := file.Name.Name
	imports := fileImports(file)
	var infos []*StructInfo

	ast.Inspect(file, func(n ast.Node) bool {
		ts, ok := n.(*ast.TypeSpec)
		if !ok {
			return true
		}

		st, ok := ts.Type.(*ast.StructType)
		if !ok {
			return true
		}

		fields, relations := parseStructFields(ts.Name.Name, st, imports)
		if len(fields) == 0 {
			return true
		}

		infos = append(infos, &StructInfo{
			Name:      ts.Name.Name,
			Package:   pkg,
			Fields:    fields,
			Relations: relations,
			Imports:   imports,
		})
		return true
	})

	return infos, nil
}

// fileImports maps package qualifiers to import paths, honoring aliases.
func fileImports(file *ast.File) map[string]string {
	m := make(map[string]string, len(file.Imports))
	for _, imp := range file.Imports {
		path := strings.Trim(imp.Path.Value, `"`)
		name := path[strings.LastIndex(path, "/")+1:]
		if imp.Name != nil {
			name = imp.Name.Name
		}
		m[name] = path
	}
	return m
}

// parseStructFields extracts db-tagged fields and rel-tagged relations from
// an AST struct type.
func parseStructFields(structName string, st *ast.StructType, imports map[string]string) ([]FieldInfo, []Relation) {
	fields := make([]FieldInfo, 0, len(st.Fields.List))
	var relations []Relation
	for _, field := range st.Fields.List {
		if rel, ok := parseRelation(structName, field, imports); ok {
			relations = append(relations, rel)
			continue
		}
		fi, skip := parseField(field)
		if skip {
			continue
		}
		fields = append(fields, fi)
	}
	return fields, relations
}

func parseField(field *ast.Field) (FieldInfo, bool) {
	if len(field.Names) == 0 {
		return FieldInfo{}, true // embedded field, skip
	}

	name := field.Names[0].Name

	// Skip unexported fields.
	if !field.Names[0].IsExported() {
		return FieldInfo{}, true
	}

	goType := typeToString(field.Type)

	// Defaults: column inferred from field name, ID field is primary key,
	// CreatedAt/UpdatedAt time fields are timestamps.
	column := naming.CamelToSnake(name)
	primaryKey := name == "ID"
	isTime := goType == "time.Time" || goType == "*time.Time"
	createdAt := isTime && name == "CreatedAt"
	updatedAt := isTime && name == "UpdatedAt"

	// Override with db tag if present.
	if field.Tag != nil {
		tag := reflect.StructTag(strings.Trim(field.Tag.Value, "`"))
		if dbTag, ok := tag.Lookup("db"); ok {
			if dbTag == "-" {
				return FieldInfo{}, true // explicitly skipped
			}
			parts := strings.Split(dbTag, ",")
			if parts[0] != "" {
				column = parts[0]
			}
			for _, opt := range parts[1:] {
				switch opt {
				case "primaryKey":
					primaryKey = true
				case "createdAt":
					createdAt = true
				case "updatedAt":
					updatedAt = true
				}
			}
		}
	}

	return FieldInfo{
		Name:       name,
		Column:     column,
		GoType:     goType,
		PrimaryKey: primaryKey,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}, false
}

// parseRelation resolves a `rel` tag and applies naming-convention defaults
// for omitted options.
func parseRelation(structName string, field *ast.Field, imports map[string]string) (Relation, bool) {
	if field.Tag == nil || len(field.Names) == 0 {
		return Relation{}, false
	}
	tag := reflect.StructTag(strings.Trim(field.Tag.Value, "`"))
	relTag, ok := tag.Lookup("rel")
	if !ok {
		return Relation{}, false
	}

	parts := strings.Split(relTag, ",")
	rel := Relation{
		FieldName: field.Names[0].Name,
		RelType:   parts[0],
	}
	for _, opt := range parts[1:] {
		key, value, found := strings.Cut(opt, ":")
		if !found {
			continue
		}
		switch key {
		case "foreign_key":
			rel.ForeignKey = value
		case "join_table":
			rel.JoinTable = value
		case "references":
			rel.References = value
		}
	}

	goType := typeToString(field.Type)
	elem := goType
	switch rel.RelType {
	case "has_many", "many_to_many":
		elem = strings.TrimPrefix(elem, "[]")
	default:
		if strings.HasPrefix(elem, "*") {
			rel.IsPointer = true
			elem = elem[1:]
		}
	}
	rel.TargetType = elem
	if qualifier, target, found := strings.Cut(elem, "."); found {
		rel.TargetType = target
		if path, ok := imports[qualifier]; ok {
			rel.TargetImportPath = path
		}
	}

	// Convention defaults.
	targetBase := rel.TargetType
	switch rel.RelType {
	case "has_many", "has_one":
		if rel.ForeignKey == "" {
			rel.ForeignKey = naming.ForeignKeyColumn(structName)
		}
	case "belongs_to":
		if rel.ForeignKey == "" {
			rel.ForeignKey = naming.ForeignKeyColumn(targetBase)
		}
	case "many_to_many":
		if rel.JoinTable == "" {
			rel.JoinTable = naming.JoinTableName(structName, targetBase)
		}
		if rel.ForeignKey == "" {
			rel.ForeignKey = naming.ForeignKeyColumn(structName)
		}
		if rel.References == "" {
			rel.References = naming.ForeignKeyColumn(targetBase)
		}
	}

	return rel, true
}

func typeToString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.SelectorExpr:
		return typeToString(t.X) + "." + t.Sel.Name
	case *ast.StarExpr:
		return "*" + typeToString(t.X)
	case *ast.ArrayType:
		if t.Len == nil {
			return "[]" + typeToString(t.Elt)
		}
		return fmt.Sprintf("[%s]%s", typeToString(t.Len), typeToString(t.Elt))
	default:
		return fmt.Sprintf("%T", expr)
	}
}
