package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/monterra-as/installer-api/internal/auth"
	"github.com/monterra-as/installer-api/internal/database"
	"github.com/monterra-as/installer-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory sqlite database with the full schema.
// The database is named after the test and shared-cache, so every pooled
// connection sees the same data. Each test gets its own database, so tests
// are isolated without cleanup.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// Match the production schema: constraints live in the SQL
		// migrations, not in model tags
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err, "failed to open in-memory test database")

	require.NoError(t, database.AutoMigrate(db), "failed to migrate test database")

	return db
}

// CreateTestUser creates a user with the given role and a bcrypt password hash
func CreateTestUser(t *testing.T, db *gorm.DB, username string, role domain.Role) *domain.User {
	t.Helper()

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Name:         "Test " + username,
		Email:        username + "@example.com",
		Role:         role,
		Active:       true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestCategory creates an active category with a unique name
func CreateTestCategory(t *testing.T, db *gorm.DB, name string) *domain.Category {
	t.Helper()

	category := &domain.Category{
		Name:   name,
		Active: true,
	}
	require.NoError(t, db.Create(category).Error)
	return category
}

// CreateTestProduct creates a product under the given category
func CreateTestProduct(t *testing.T, db *gorm.DB, categoryID uuid.UUID, name string, unitPrice float64) *domain.Product {
	t.Helper()

	product := &domain.Product{
		CategoryID: categoryID,
		Name:       name,
		UnitPrice:  unitPrice,
		Unit:       "pcs",
		Active:     true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

// CreateTestProject creates a project owned by the given user
func CreateTestProject(t *testing.T, db *gorm.DB, createdBy *domain.User, status domain.ProjectStatus) *domain.Project {
	t.Helper()

	project := &domain.Project{
		ProjectName:   "Test Project",
		InvoiceNumber: UniqueNumber("PRJ"),
		ClientName:    "Test Client",
		Status:        status,
		TotalCost:     1000,
		CreatedByID:   createdBy.ID,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

// UniqueNumber returns a unique human-readable number for test records
func UniqueNumber(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
