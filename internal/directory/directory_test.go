package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"travelhub/internal/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(&model.User{}, &model.Center{}, &model.Department{})
	if err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	return db
}

func TestDirectoryLookups(t *testing.T) {
	db := setupTestDB(t)
	dir := New(db)
	ctx := context.Background()

	user := model.User{FullName: "Ada Lovelace", Email: "ada@e.com", Password: "x", Location: "Lagos", RoleID: model.RoleRequester}
	require.NoError(t, db.Create(&user).Error)

	t.Run("by id", func(t *testing.T) {
		found, err := dir.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", found.FullName)
	})

	t.Run("by name is case-insensitive", func(t *testing.T) {
		found, err := dir.FindByName(ctx, "ada lovelace")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("by email", func(t *testing.T) {
		found, err := dir.FindByEmail(ctx, "ada@e.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("by role and location", func(t *testing.T) {
		finance := model.User{FullName: "Fin One", Email: "f1@e.com", Password: "x", Location: "Lagos", RoleID: model.RoleFinance}
		elsewhere := model.User{FullName: "Fin Two", Email: "f2@e.com", Password: "x", Location: "Nairobi", RoleID: model.RoleFinance}
		require.NoError(t, db.Create(&finance).Error)
		require.NoError(t, db.Create(&elsewhere).Error)

		members, err := dir.FindByRoleAndLocation(ctx, model.RoleFinance, "lagos")
		require.NoError(t, err)
		require.Len(t, members, 1)
		assert.Equal(t, "Fin One", members[0].FullName)
	})
}

func TestDirectoryFindByDepartment(t *testing.T) {
	db := setupTestDB(t)
	dir := New(db)
	ctx := context.Background()

	dept := model.Department{Name: "Engineering"}
	require.NoError(t, db.Create(&dept).Error)
	checker := model.User{FullName: "Barbara Liskov", Email: "bl@e.com", Password: "x", RoleID: model.RoleBudgetChecker, Departments: []model.Department{dept}}
	require.NoError(t, db.Create(&checker).Error)

	t.Run("case-insensitive name match", func(t *testing.T) {
		members, err := dir.FindByDepartment(ctx, "ENGINEERING")
		require.NoError(t, err)
		require.Len(t, members, 1)
		assert.Equal(t, "Barbara Liskov", members[0].FullName)
	})

	t.Run("unknown department means no members, not an error", func(t *testing.T) {
		members, err := dir.FindByDepartment(ctx, "Astrology")
		require.NoError(t, err)
		assert.Empty(t, members)
	})

	t.Run("membership names", func(t *testing.T) {
		names, err := dir.DepartmentsOf(ctx, checker.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Engineering"}, names)
	})
}

func TestDirectoryFindByDestinations(t *testing.T) {
	db := setupTestDB(t)
	dir := New(db)
	ctx := context.Background()

	kenya := model.Center{Location: "Kenya"}
	uganda := model.Center{Location: "Uganda"}
	require.NoError(t, db.Create(&kenya).Error)
	require.NoError(t, db.Create(&uganda).Error)

	mkAdmin := func(name, email string, centerID *model.Center) model.User {
		u := model.User{FullName: name, Email: email, Password: "x", RoleID: model.RoleTravelAdministrator}
		if centerID != nil {
			u.CenterID = &centerID.ID
		}
		require.NoError(t, db.Create(&u).Error)
		return u
	}
	mkAdmin("Admin K1", "k1@e.com", &kenya)
	mkAdmin("Admin K2", "k2@e.com", &kenya)
	mkAdmin("Admin U1", "u1@e.com", &uganda)
	mkAdmin("Admin Unassigned", "ua@e.com", nil)

	t.Run("destination contains the center location", func(t *testing.T) {
		admins, err := dir.FindByDestinations(ctx, model.RoleTravelAdministrator, []string{"Nairobi, Kenya"})
		require.NoError(t, err)
		assert.Len(t, admins, 2)
	})

	t.Run("several destinations union their centers", func(t *testing.T) {
		admins, err := dir.FindByDestinations(ctx, model.RoleTravelAdministrator, []string{"Nairobi, Kenya", "Kampala, Uganda"})
		require.NoError(t, err)
		assert.Len(t, admins, 3)
	})

	t.Run("unresolvable destinations are skipped", func(t *testing.T) {
		admins, err := dir.FindByDestinations(ctx, model.RoleTravelAdministrator, []string{"Atlantis"})
		require.NoError(t, err)
		assert.Empty(t, admins)
	})

	t.Run("matching is case-insensitive", func(t *testing.T) {
		admins, err := dir.FindByDestinations(ctx, model.RoleTravelAdministrator, []string{"nairobi, KENYA"})
		require.NoError(t, err)
		assert.Len(t, admins, 2)
	})
}
