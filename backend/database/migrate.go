package database

import (
	"fmt"

	"gorm.io/gorm"

	"skillcred/backend/models"
)

// Models lists every table the engine owns, in dependency order.
var Models = []interface{}{
	&models.Skill{},
	&models.Test{},
	&models.Question{},
	&models.Attempt{},
	&models.Badge{},
}

// ownedTables are filtered by row-level security on user_id.
var ownedTables = []string{"attempts", "badges"}

// Migrate creates the schema. On Postgres it also installs the row-level
// security policies that restrict attempts and badges to the identity bound
// by the Gateway; when no identity is bound the policies match no rows.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, table := range ownedTables {
			for _, stmt := range rlsStatements(table) {
				if err := tx.Exec(stmt).Error; err != nil {
					return fmt.Errorf("install policy on %s: %w", table, err)
				}
			}
		}
		return nil
	})
}

func rlsStatements(table string) []string {
	policy := table + "_owner"
	predicate := fmt.Sprintf("user_id = current_setting('%s', true)", SessionSetting)
	return []string{
		fmt.Sprintf("ALTER TABLE %s ENABLE ROW LEVEL SECURITY", table),
		fmt.Sprintf("ALTER TABLE %s FORCE ROW LEVEL SECURITY", table),
		fmt.Sprintf("DROP POLICY IF EXISTS %s ON %s", policy, table),
		fmt.Sprintf("CREATE POLICY %s ON %s USING (%s) WITH CHECK (%s)", policy, table, predicate, predicate),
	}
}
