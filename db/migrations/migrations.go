// Package migrations применяет встроенные миграции goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var embedded embed.FS

const dir = "sql"

func setup() error {
	goose.SetBaseFS(embedded)
	return errors.Wrap(goose.SetDialect("postgres"), "set goose dialect")
}

// Run выполняет команду goose (up, down, status, redo, version, reset)
// над db со встроенными миграциями.
func Run(ctx context.Context, db *sql.DB, command string) error {
	if err := setup(); err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, db, dir); err != nil {
		return errors.Wrapf(err, "goose %s", command)
	}
	return nil
}

// Up применяет все непримененные миграции.
func Up(ctx context.Context, db *sql.DB) error {
	return Run(ctx, db, "up")
}

// Files возвращает имена встроенных файлов миграций по порядку.
func Files() ([]string, error) {
	entries, err := embedded.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "read embedded migrations")
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}
