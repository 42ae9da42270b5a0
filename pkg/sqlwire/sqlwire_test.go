package sqlwire

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gridstore-io/gridlink/types"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestCount(t *testing.T) {
	tests := []struct {
		name      string
		filter    types.Filter
		setupMock func(mock sqlmock.Sqlmock)
		expected  int64
		expectErr bool
	}{
		{
			name:   "unfiltered count",
			filter: types.Filter{},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM events ")).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(42)))
			},
			expected: 42,
		},
		{
			name: "filtered count",
			filter: types.Filter{
				Conditions: []types.Condition{{Column: "age", Operator: ">", Value: "30"}},
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM events WHERE "age" > 30`)).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(7)))
			},
			expected: 7,
		},
		{
			name:   "query failure is a count error",
			filter: types.Filter{},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM events ")).
					WillReturnError(assert.AnError)
			},
			expectErr: true,
		},
		{
			name:   "missing result row is a count error",
			filter: types.Filter{},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM events ")).
					WillReturnRows(sqlmock.NewRows([]string{"count"}))
			},
			expectErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tc.setupMock(mock)

			count, err := Count(context.Background(), db, types.TableRef{Name: "events"}, tc.filter)
			if tc.expectErr {
				require.Error(t, err)
				var countErr *types.CountQueryError
				require.True(t, errors.As(err, &countErr))
				assert.Contains(t, countErr.Query, "SELECT count(*) FROM events")
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, count)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCount_PredicateErrorSkipsQuery(t *testing.T) {
	db, mock := newMockDB(t)

	_, err := Count(context.Background(), db, types.TableRef{Name: "events"}, types.Filter{
		Conditions: []types.Condition{{Column: "name", Operator: "like", Value: `"a%"`}},
	})
	require.Error(t, err)

	var predicateErr *types.UnsupportedPredicateError
	assert.True(t, errors.As(err, &predicateErr))
	var countErr *types.CountQueryError
	assert.False(t, errors.As(err, &countErr))

	// nothing must reach the gateway
	assert.NoError(t, mock.ExpectationsWereMet())
}
