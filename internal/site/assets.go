package site

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed assets
var themeAssets embed.FS

// writeThemeAssets copies the embedded theme files verbatim into the staging
// assets directory.
func writeThemeAssets(dir string) error {
	return fs.WalkDir(themeAssets, "assets", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return newFatalStageError(StageAssets, err)
		}
		if d.IsDir() {
			return nil
		}
		data, err := themeAssets.ReadFile(p)
		if err != nil {
			return newFatalStageError(StageAssets, fmt.Errorf("read embedded asset %s: %w", p, err))
		}
		dst := filepath.Join(dir, filepath.Base(p))
		// #nosec G306 -- theme assets are public content
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return newFatalStageError(StageAssets, fmt.Errorf("write asset %s: %w", filepath.Base(p), err))
		}
		return nil
	})
}
