package schema

import (
	"strings"

	"golang.org/x/net/html"
)

type attr struct {
	name, value string
}

// element writes <tag a="v">inner</tag>. inner is already markup.
func element(tag string, attrs []attr, inner string) string {
	var sb strings.Builder
	openTag(&sb, tag, attrs)
	sb.WriteString(inner)
	sb.WriteString("</")
	sb.WriteString(tag)
	sb.WriteByte('>')
	return sb.String()
}

// void writes a tag without content or end tag.
func void(tag string, attrs []attr) string {
	var sb strings.Builder
	openTag(&sb, tag, attrs)
	return sb.String()
}

func openTag(sb *strings.Builder, tag string, attrs []attr) {
	sb.WriteByte('<')
	sb.WriteString(tag)
	for _, a := range attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.name)
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(a.value))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
}

// Escape escapes text content for inclusion in markup.
func Escape(s string) string {
	return html.EscapeString(s)
}
