package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Накатывает migrations/*.sql по порядку имён. Уже применённые файлы
// пропускаются по таблице schema_migrations.

func dsnFromConfig() (string, error) {
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		return dsn, nil
	}

	viper.SetConfigName("values_local")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("configs")
	if err := viper.ReadInConfig(); err != nil {
		return "", errors.Wrap(err, "read config")
	}
	dsn := viper.GetString("db_dsn")
	if dsn == "" {
		return "", errors.New("has no db_dsn in config and no DATABASE_DSN in env")
	}
	return dsn, nil
}

func applyFile(ctx context.Context, conn *pgx.Conn, path string) error {
	name := filepath.Base(path)

	var applied bool
	err := conn.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE name = $1)`, name).Scan(&applied)
	if err != nil {
		return errors.Wrap(err, "check applied")
	}
	if applied {
		fmt.Printf("skip %s\n", name)
		return nil
	}

	sqlBody, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read migration")
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err = tx.Exec(ctx, string(sqlBody)); err != nil {
		return errors.Wrap(err, fmt.Sprintf("apply %s", name))
	}
	if _, err = tx.Exec(ctx, `INSERT INTO schema_migrations(name) VALUES ($1)`, name); err != nil {
		return errors.Wrap(err, "mark applied")
	}
	if err = tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit")
	}
	fmt.Printf("applied %s\n", name)
	return nil
}

func run() error {
	ctx := context.Background()

	dsn, err := dsnFromConfig()
	if err != nil {
		return err
	}

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return errors.Wrap(err, "connect")
	}
	defer func() { _ = conn.Close(ctx) }()

	_, err = conn.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (name TEXT PRIMARY KEY, applied_at TIMESTAMPTZ NOT NULL DEFAULT now())`)
	if err != nil {
		return errors.Wrap(err, "ensure schema_migrations")
	}

	files, err := filepath.Glob("migrations/*.sql")
	if err != nil {
		return errors.Wrap(err, "glob migrations")
	}
	if len(files) == 0 {
		return errors.New("has no files in migrations/")
	}
	sort.Strings(files)

	for _, f := range files {
		if err = applyFile(ctx, conn, f); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
