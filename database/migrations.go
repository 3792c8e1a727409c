package database

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/yeremiapane/hospital-app/utils"
	"gorm.io/gorm"
)

const (
	DialectMySQL  = "mysql"
	DialectSQLite = "sqlite"
)

//go:embed migrations/mysql/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

type Migration struct {
	Version int
	Name    string
	UpSQL   string
}

func loadMigrations(dialect string) ([]Migration, error) {
	if dialect != DialectMySQL && dialect != DialectSQLite {
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	dir := path.Join("migrations", dialect)
	files, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return nil, err
	}

	var migrations []Migration
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		data, err := migrationsFS.ReadFile(path.Join(dir, f.Name()))
		if err != nil {
			return nil, err
		}
		var v int
		if _, err := fmt.Sscanf(f.Name(), "%d_", &v); err != nil {
			return nil, fmt.Errorf("invalid migration filename %s: %w", f.Name(), err)
		}
		migrations = append(migrations, Migration{Version: v, Name: f.Name(), UpSQL: string(data)})
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

// statements splits a migration file on semicolons. Migration files hold
// plain DDL only, so no statement carries a semicolon of its own.
func statements(sql string) []string {
	var out []string
	for _, stmt := range strings.Split(sql, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// Migrate applies the embedded migrations for dialect in version order and
// records the last applied version in schema_version. MySQL commits DDL
// implicitly, so there a failed migration leaves earlier statements applied;
// every statement is written to be re-runnable.
func Migrate(db *gorm.DB, dialect string) error {
	migrations, err := loadMigrations(dialect)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`).Error; err != nil {
			return fmt.Errorf("create schema_version: %w", err)
		}

		current, err := readVersion(tx)
		if err != nil {
			return err
		}

		for _, m := range migrations {
			if m.Version <= current {
				continue
			}
			for _, stmt := range statements(m.UpSQL) {
				if err := tx.Exec(stmt).Error; err != nil {
					return fmt.Errorf("migration %s: %w", m.Name, err)
				}
			}
			if err := tx.Exec(`UPDATE schema_version SET version = ?`, m.Version).Error; err != nil {
				return fmt.Errorf("update schema_version: %w", err)
			}
			utils.InfoLogger.WithField("migration", m.Name).Info("Applied migration")
			current = m.Version
		}
		return nil
	})
}

func readVersion(tx *gorm.DB) (int, error) {
	var versions []int
	if err := tx.Raw(`SELECT version FROM schema_version LIMIT 1`).Scan(&versions).Error; err != nil {
		return 0, fmt.Errorf("read schema_version: %w", err)
	}
	if len(versions) == 0 {
		if err := tx.Exec(`INSERT INTO schema_version (version) VALUES (0)`).Error; err != nil {
			return 0, fmt.Errorf("init schema_version: %w", err)
		}
		return 0, nil
	}
	return versions[0], nil
}

// SchemaVersion reports the last applied migration version.
func SchemaVersion(db *gorm.DB) (int, error) {
	var versions []int
	if err := db.Raw(`SELECT version FROM schema_version LIMIT 1`).Scan(&versions).Error; err != nil {
		return 0, err
	}
	if len(versions) == 0 {
		return 0, errors.New("schema_version is empty")
	}
	return versions[0], nil
}

// LatestVersion is the highest embedded migration version for dialect.
func LatestVersion(dialect string) (int, error) {
	migrations, err := loadMigrations(dialect)
	if err != nil {
		return 0, err
	}
	if len(migrations) == 0 {
		return 0, nil
	}
	return migrations[len(migrations)-1].Version, nil
}
