// Command gltfkeys prints the resource cache keys of glTF and GLB files and reports
// which resources the files share.
package main

import (
	"context"
	"os"
)

func main() {
	if err := newCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
