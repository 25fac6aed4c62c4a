package models_test

import (
	"strings"
	"testing"

	"github.com/reporthub-io/reporthub/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Organization{}, &models.Space{}))
	return db
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":          "hello-world",
		"  Leaky  Pipe!!  ":    "leaky-pipe",
		"Größe & Ümlaut":       "gr-e-mlaut",
		"already-slugged":      "already-slugged",
		"UPPER_case_123":       "upper-case-123",
		"---":                  "",
		"":                     "",
		"множество":            "",
		"mixed мно latin":      "mixed-latin",
	}
	for in, want := range cases {
		require.Equal(t, want, models.Slugify(in), "input %q", in)
	}
}

func TestUniqueSlugAppendsCode(t *testing.T) {
	db := newTestDB(t)

	slug, err := models.UniqueSlug(db, "spaces", "North Wing")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(slug, "north-wing-"))
	require.Len(t, slug, len("north-wing-")+4)
}

func TestUniqueSlugCapsLength(t *testing.T) {
	db := newTestDB(t)

	long := strings.Repeat("a", 120)
	slug, err := models.UniqueSlug(db, "spaces", long)
	require.NoError(t, err)
	require.LessOrEqual(t, len(slug), 50)
}

func TestUniqueSlugAvoidsCollisions(t *testing.T) {
	db := newTestDB(t)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		slug, err := models.UniqueSlug(db, "spaces", "Maintenance")
		require.NoError(t, err)
		require.False(t, seen[slug], "duplicate slug %q", slug)
		seen[slug] = true

		err = db.Exec("INSERT INTO spaces (id, name, org_id, slug) VALUES (?, ?, ?, ?)",
			slug, "Maintenance", slug, slug).Error
		require.NoError(t, err)
	}
}
