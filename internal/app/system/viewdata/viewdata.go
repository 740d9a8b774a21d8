// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"html/template"
	"net/http"

	"github.com/CherdHall/PlotForge/internal/app/system/authz"
	"github.com/dalemusser/waffle/pantry/httpnav"
)

// SiteName is the display name used across page titles and the layout.
const SiteName = "PlotForge"

// BaseVM contains common fields for all view models. Embed it in a
// feature-specific view model:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
type BaseVM struct {
	SiteName string
	Title    string

	IsLoggedIn bool
	UserName   string

	BackURL     string
	CurrentPath string

	// Flash-style messages rendered by the layout.
	Error  template.HTML
	Notice string
}

// NewBaseVM builds the shared view model from the request context.
// backDefault is used when no usable back URL is carried on the request.
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	name, _, signedIn := authz.UserCtx(r)
	return BaseVM{
		SiteName:    SiteName,
		Title:       title,
		IsLoggedIn:  signedIn,
		UserName:    name,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
	}
}

// SetError sets the inline error message as template HTML.
func (b *BaseVM) SetError(msg string) {
	b.Error = template.HTML(msg)
}
