package layouts

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"
)

var shell = template.Must(template.New("shell").Parse(`
{{define "head"}}<!DOCTYPE html>
<html lang="zh-Hans">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body{margin:0;font-family:system-ui,sans-serif;background:#16130f;color:#eee4d0}
header{display:flex;gap:1rem;align-items:center;padding:.75rem 1.25rem;border-bottom:1px solid #3a3128}
header a{color:#d9b871;text-decoration:none}
main{padding:1.25rem;max-width:72rem;margin:0 auto}
.flash{background:#5a1f1f;padding:.5rem 1rem;border-radius:4px}
.map{position:relative;aspect-ratio:16/9;background:#2b2419;border:1px solid #3a3128;overflow:hidden}
.marker{position:absolute;transform:translate(-50%,-50%);font-size:.8rem;white-space:nowrap}
.marker.locked{opacity:.45}
.cols{display:grid;grid-template-columns:16rem 1fr;gap:1.25rem}
.status{color:#d9b871}
input,textarea,select{width:100%;box-sizing:border-box;background:#221d16;color:inherit;border:1px solid #3a3128}
textarea{min-height:5rem;font-family:ui-monospace,monospace}
</style>
</head>
<body>
<header>
<a href="/">世界图鉴</a>
{{if .Console}}<span>管理</span>{{end}}
</header>
<main>
{{with .Flash}}<p class="flash">{{.}}</p>{{end}}
{{end}}
{{define "foot"}}</main>
</body>
</html>
{{end}}`))

type shellData struct {
	Title   string
	Console bool
	Flash   string
}

// Base wraps body in the page shell.
func Base(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		data := shellData{
			Title:   title,
			Console: IsConsole(ctx),
			Flash:   GetFlashError(ctx),
		}
		if err := shell.ExecuteTemplate(w, "head", data); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		return shell.ExecuteTemplate(w, "foot", nil)
	})
}
