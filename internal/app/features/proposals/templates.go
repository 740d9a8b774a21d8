// internal/app/features/proposals/templates.go
package proposals

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "proposals",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
