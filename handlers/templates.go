package handlers

import (
	"html/template"
)

// The decoy pages are deliberately plain: they only need to look like a
// broken document download to whoever followed the link.
const pages = `
{{define "alert.html"}}<!doctype html>
<html>
<head><meta charset="utf-8"><title>{{.FileName}}</title></head>
<body>
<h1>Preparing download&hellip;</h1>
<p>Your file <strong>{{.FileName}}</strong> could not be opened. The document
may have been moved or you may not have permission to access it.</p>
<p>Please contact your administrator if the problem persists.</p>
</body>
</html>{{end}}

{{define "not_found.html"}}<!doctype html>
<html>
<head><meta charset="utf-8"><title>Not Found</title></head>
<body>
<h1>404</h1>
<p>The requested document does not exist.</p>
</body>
</html>{{end}}
`

// Templates returns the embedded decoy pages for gin's HTML renderer.
func Templates() *template.Template {
	return template.Must(template.New("pages").Parse(pages))
}
