package tablelayer

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// CreateFromScripts hydrates an empty backend by running every "<attachment>.db.sql"
// file found under dir, subdirectories included, passing the filename stem
// as the attachment name, e.g. "music.db.sql" is passed as "music". With
// SQLAdapter that name does not select a database: unqualified statements
// in every script run against the primary database. It walks the
// same way a library scan walks a tree of media files, just retargeted at
// schema scripts instead of audio tags.
func (l *Layer) CreateFromScripts(ctx context.Context, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".db.sql") {
			return nil
		}

		attachment := strings.TrimSuffix(filepath.Base(path), ".db.sql")
		script, err := os.ReadFile(path)
		if err != nil {
			return wrapBackend("create_from_scripts", err)
		}
		if _, err := l.Adapter.Exec(ctx, attachment, string(script)); err != nil {
			return wrapBackend("create_from_scripts", err)
		}
		return nil
	})
}
