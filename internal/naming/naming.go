// Package naming derives database identifiers from Go names.
package naming

import (
	"sort"
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
)

// CamelToSnake converts a CamelCase string to snake_case.
// Consecutive uppercase letters (acronyms) are kept together:
// "ID" → "id", "UserID" → "user_id", "CreatedAt" → "created_at".
func CamelToSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				next := rune(0)
				if i+1 < len(runes) {
					next = runes[i+1]
				}
				if unicode.IsLower(prev) || (unicode.IsUpper(prev) && unicode.IsLower(next)) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SnakeToCamel converts a snake_case string to CamelCase.
// "post_authors" → "PostAuthors".
func SnakeToCamel(s string) string {
	parts := strings.Split(s, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// TableName derives a plural snake_case table name from a Go type name.
// "Post" → "posts", "PostAuthor" → "post_authors".
func TableName(typeName string) string {
	return inflection.Plural(CamelToSnake(typeName))
}

// ForeignKeyColumn derives the conventional foreign key column for a Go
// type name. "Post" → "post_id".
func ForeignKeyColumn(typeName string) string {
	return inflection.Singular(CamelToSnake(typeName)) + "_id"
}

// JoinTableName derives the conventional join table name for a many-to-many
// relationship between two Go type names: the singular snake_case names are
// sorted and the second is pluralized. The order of arguments does not
// matter: JoinTableName("Post", "Author") == JoinTableName("Author", "Post")
// == "author_posts".
func JoinTableName(a, b string) string {
	names := []string{
		inflection.Singular(CamelToSnake(a)),
		inflection.Singular(CamelToSnake(b)),
	}
	sort.Strings(names)
	return names[0] + "_" + inflection.Plural(names[1])
}
