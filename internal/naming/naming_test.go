package naming_test

import (
	"testing"

	"github.com/misokaze/relgen/internal/naming"
)

func TestCamelToSnake(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"ID", "id"},
		{"Name", "name"},
		{"CreatedAt", "created_at"},
		{"UserID", "user_id"},
		{"HTTPServer", "http_server"},
		{"userProfile", "user_profile"},
		{"A", "a"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got := naming.CamelToSnake(tt.input)
			if got != tt.want {
				t.Errorf("CamelToSnake(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSnakeToCamel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"posts", "Posts"},
		{"post_authors", "PostAuthors"},
		{"a", "A"},
		{"", ""},
		{"__x", "X"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got := naming.SnakeToCamel(tt.input)
			if got != tt.want {
				t.Errorf("SnakeToCamel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTableName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"Post", "posts"},
		{"Author", "authors"},
		{"PostAuthor", "post_authors"},
		{"Category", "categories"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got := naming.TableName(tt.input)
			if got != tt.want {
				t.Errorf("TableName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestForeignKeyColumn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"Post", "post_id"},
		{"Author", "author_id"},
		{"EndUser", "end_user_id"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got := naming.ForeignKeyColumn(tt.input)
			if got != tt.want {
				t.Errorf("ForeignKeyColumn(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestJoinTableName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want string
	}{
		{name: "sorted order", a: "Author", b: "Post", want: "author_posts"},
		{name: "reversed arguments", a: "Post", b: "Author", want: "author_posts"},
		{name: "multi word", a: "Tag", b: "BlogPost", want: "blog_post_tags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := naming.JoinTableName(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("JoinTableName(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
