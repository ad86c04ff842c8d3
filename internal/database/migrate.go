package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/cookbook/backend/internal/models"
)

// SchemaMigrationsTable records applied SQL migrations. cmd/migrate uses the same table.
const SchemaMigrationsTable = "schema_migrations"

const createSchemaMigrations = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version    VARCHAR(64) PRIMARY KEY,
	name       VARCHAR(255) NOT NULL,
	applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// AutoMigrate creates the schema from the models. It is used for sqlite and
// for tests. The case-insensitive recipe name index cannot be expressed as a
// struct tag and is created separately.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}
	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_recipes_name_lower ON recipes (LOWER(name))").Error; err != nil {
		return fmt.Errorf("failed to create recipe name index: %w", err)
	}
	return nil
}

// RunMigrations applies pending SQL files from migrationsDir in name order.
// sqlite databases are migrated from the models instead.
func RunMigrations(db *gorm.DB, migrationsDir string, logger *zap.Logger) error {
	if db.Dialector.Name() == "sqlite" {
		logger.Info("using GORM auto-migration for SQLite")
		return AutoMigrate(db)
	}

	files, err := MigrationFiles(migrationsDir)
	if err != nil {
		return err
	}

	if err := db.Exec(createSchemaMigrations).Error; err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, file := range files {
		version := MigrationVersion(file)

		var count int64
		if err := db.Table(SchemaMigrationsTable).Where("version = ?", version).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			logger.Debug("skipping migration, already applied", zap.String("file", file))
			continue
		}

		content, err := os.ReadFile(filepath.Join(migrationsDir, file))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(content)).Error; err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", file, err)
			}
			if err := tx.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", version, file).Error; err != nil {
				return fmt.Errorf("failed to record migration %s: %w", file, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		logger.Info("applied migration", zap.String("file", file))
	}
	return nil
}

// MigrationFiles lists forward migrations in dir, sorted by name. Rollback
// files (*_rollback.sql) are skipped.
func MigrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".sql" || strings.HasSuffix(name, "_rollback.sql") {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}

// MigrationVersion extracts the numeric prefix of a file such as 0001_init.sql.
func MigrationVersion(file string) string {
	return strings.SplitN(file, "_", 2)[0]
}

// RollbackFile names the rollback script paired with a migration.
func RollbackFile(file string) string {
	return strings.TrimSuffix(file, ".sql") + "_rollback.sql"
}
