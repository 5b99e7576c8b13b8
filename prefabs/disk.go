package prefabs

import (
	"os"
	"path/filepath"
)

// Dir is where disk overrides are looked up, relative to the working directory.
var Dir = "prefabs"

func readDisk(clean string) ([]byte, error) {
	return os.ReadFile(filepath.Join(Dir, filepath.FromSlash(clean)))
}
