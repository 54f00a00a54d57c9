package mediapager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newGORMMySQLMock() (string, *gorm.DB, sqlmock.Sqlmock, error) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		return "", nil, nil, err
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      mockDB,
		SkipInitializeWithVersion: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return "", nil, nil, err
	}

	return "mysql", db, mock, nil
}

func newGORMPostgresMock() (string, *gorm.DB, sqlmock.Sqlmock, error) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		return "", nil, nil, err
	}

	dialector := postgres.New(postgres.Config{
		Conn: mockDB,
	})

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return "", nil, nil, err
	}

	return "postgres", db, mock, nil
}

var sqlMockFnList = []func() (string, *gorm.DB, sqlmock.Sqlmock, error){
	newGORMMySQLMock,
	newGORMPostgresMock,
}

const (
	selectPreferenceQuery = "^SELECT \\* FROM [`'\"]sort_preferences[`'\"] WHERE source_id = (\\?|\\$1) LIMIT 1$"
	upsertPreferenceQuery = "^INSERT INTO [`'\"]sort_preferences[`'\"] .+(ON DUPLICATE KEY UPDATE|ON CONFLICT).+$"
	deletePreferenceQuery = "^DELETE FROM [`'\"]sort_preferences[`'\"] WHERE source_id = (\\?|\\$1)$"
)

func Test_GORMPreferenceStore_GetPreference(t *testing.T) {
	columns := []string{"source_id", "sort_by", "sort_order", "updated_at"}

	tests := []struct {
		name    string
		rows    func() *sqlmock.Rows
		want    *SortSpec
		wantErr bool
	}{
		{
			name: "stored preference",
			rows: func() *sqlmock.Rows {
				return sqlmock.NewRows(columns).AddRow("albums", "title", -1, time.Now())
			},
			want: &SortSpec{SortBy: "title", SortOrder: Descending},
		},
		{
			name: "no preference",
			rows: func() *sqlmock.Rows { return sqlmock.NewRows(columns) },
			want: nil,
		},
		{
			name: "corrupt order",
			rows: func() *sqlmock.Rows {
				return sqlmock.NewRows(columns).AddRow("albums", "title", 7, time.Now())
			},
			wantErr: true,
		},
	}

	for _, sqlMockFn := range sqlMockFnList {
		for _, tt := range tests {
			dialect, db, mock, err := sqlMockFn()
			require.NoError(t, err)

			t.Run(dialect+": "+tt.name, func(t *testing.T) {
				mock.ExpectQuery(selectPreferenceQuery).
					WithArgs("albums").
					WillReturnRows(tt.rows())

				got, err := NewGORMPreferenceStore(db).GetPreference(context.Background(), "albums")
				if tt.wantErr {
					require.Error(t, err)
				} else {
					require.NoError(t, err)
					assert.Equal(t, tt.want, got)
				}
				require.NoError(t, mock.ExpectationsWereMet())
			})
		}
	}
}

func Test_GORMPreferenceStore_GetPreference_QueryError(t *testing.T) {
	for _, sqlMockFn := range sqlMockFnList {
		dialect, db, mock, err := sqlMockFn()
		require.NoError(t, err)

		t.Run(dialect, func(t *testing.T) {
			errDB := errors.New("connection reset")
			mock.ExpectQuery(selectPreferenceQuery).WillReturnError(errDB)

			_, err := NewGORMPreferenceStore(db).GetPreference(context.Background(), "albums")
			assert.ErrorIs(t, err, errDB)
		})
	}
}

func Test_GORMPreferenceStore_SetPreference(t *testing.T) {
	for _, sqlMockFn := range sqlMockFnList {
		dialect, db, mock, err := sqlMockFn()
		require.NoError(t, err)

		t.Run(dialect, func(t *testing.T) {
			ctx := context.Background()
			store := NewGORMPreferenceStore(db)
			changes, unsubscribe := store.ObservePreferenceChanges("albums")
			defer unsubscribe()

			mock.ExpectExec(upsertPreferenceQuery).
				WithArgs("albums", "artist", 1, sqlmock.AnyArg()).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec(deletePreferenceQuery).
				WithArgs("albums").
				WillReturnResult(sqlmock.NewResult(0, 1))

			require.NoError(t, store.SetPreference(ctx, "albums", &SortSpec{SortBy: "artist", SortOrder: Ascending}))
			require.NoError(t, store.SetPreference(ctx, "albums", nil))
			require.NoError(t, mock.ExpectationsWereMet())

			assert.Equal(t, &SortSpec{SortBy: "artist", SortOrder: Ascending}, <-changes)
			assert.Nil(t, <-changes)
		})
	}
}

func Test_GORMPreferenceStore_SetPreference_FailureIsNotPublished(t *testing.T) {
	for _, sqlMockFn := range sqlMockFnList {
		dialect, db, mock, err := sqlMockFn()
		require.NoError(t, err)

		t.Run(dialect, func(t *testing.T) {
			store := NewGORMPreferenceStore(db)
			changes, unsubscribe := store.ObservePreferenceChanges("albums")
			defer unsubscribe()

			mock.ExpectExec(upsertPreferenceQuery).WillReturnError(errors.New("read only"))

			err := store.SetPreference(context.Background(), "albums", &SortSpec{SortBy: "title", SortOrder: Ascending})
			require.Error(t, err)
			assert.Empty(t, changes)

			assert.Error(t, store.SetPreference(context.Background(), "albums", &SortSpec{SortBy: "title"}))
		})
	}
}
