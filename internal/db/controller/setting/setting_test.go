package setting

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mirror-ball/mirrorball/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.Setting{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func TestGet(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.Setting{Name: "GLOBAL", Value: []byte(`{"userRestriction":""}`)}).Error)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		settingName   string
		expectedError error
		expectedValue []byte
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			settingName:   "test",
			expectedError: ErrDBNil,
		},
		{
			name:          "empty name",
			dbParam:       db,
			settingName:   "",
			expectedError: ErrSettingNameEmpty,
		},
		{
			name:          "setting not found",
			dbParam:       db,
			settingName:   "nonexistent",
			expectedError: ErrSettingNotFound,
		},
		{
			name:          "successful get",
			dbParam:       db,
			settingName:   "GLOBAL",
			expectedValue: []byte(`{"userRestriction":""}`),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := Get(tc.dbParam, tc.settingName)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, result)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expectedValue, result.Value)
		})
	}
}

func TestSet(t *testing.T) {
	db := setupTestDB(t)

	first, err := Set(db, "GLOBAL", []byte("first"))
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), first.Value)

	second, err := Set(db, "GLOBAL", []byte("second"))
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), second.Value)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.Setting{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
