// Package web 内嵌聊天页面模板。
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Templates 解析内嵌的全部页面模板。
func Templates() (*template.Template, error) {
	return template.ParseFS(templatesFS, "templates/*.html")
}
