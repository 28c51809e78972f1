package page

import (
	"embed"
	"io/fs"
)

//go:embed static
var static embed.FS

// Assets holds index.html and the scripts it loads.
func Assets() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
