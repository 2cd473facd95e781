package lightpass

import (
	"fmt"
)

// RendererTag marks that a renderer has been installed into the App.
// Only one renderer may be installed at a time.
type RendererTag struct {
	Name RendererName
}

// ensureSingleRenderer panics when a different renderer is already installed.
func ensureSingleRenderer(app *App, name RendererName) {
	if app == nil {
		panic("ensureSingleRenderer: app is nil")
	}
	if tag, ok := Resource[RendererTag](app); ok {
		if tag.Name != name {
			app.Logger().Errorf("Multiple renderers installed: %s and %s", tag.Name, name)
			panic(fmt.Sprintf("Multiple renderers installed: %s and %s", tag.Name, name))
		}
		return
	}
	app.addResources(&RendererTag{Name: name})
}
