package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pulse-api/internal/models"
)

var (
	factFrom = time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	factTo   = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
)

func TestTrafficFacts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFactRepository(db)

	rows := sqlmock.NewRows([]string{"site_id", "date", "page_url", "users", "pageviews", "sessions", "avg_session_duration", "bounce_rate"}).
		AddRow("site-1", factTo, "/tech/guide-1", 40, 120, 50, 88.5, 0.41)
	mock.ExpectQuery(regexp.QuoteMeta("FROM page_daily_metrics WHERE site_id = ? AND date >= ? AND date <= ?")).
		WithArgs("site-1", "2025-03-04", "2025-03-10").
		WillReturnRows(rows)

	facts, err := repo.TrafficFacts(context.Background(), "site-1", factFrom, factTo)
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, int64(120), facts[0].Pageviews)
	assert.Equal(t, "/tech/guide-1", facts[0].PageURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevenueFactsWrapsErrors(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFactRepository(db)

	boom := errors.New("relation does not exist")
	mock.ExpectQuery("FROM revenue_daily_metrics").WillReturnError(boom)

	_, err := repo.RevenueFacts(context.Background(), "site-1", factFrom, factTo)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "select revenue facts")
}

func TestPageURLsUnionsBothTables(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFactRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UNION SELECT page_url FROM revenue_daily_metrics WHERE site_id = ?")).
		WithArgs("site-1", "site-1").
		WillReturnRows(sqlmock.NewRows([]string{"page_url"}).AddRow("/a").AddRow("/b"))

	urls, err := repo.PageURLs(context.Background(), "site-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, urls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceFactsDeletesThenInserts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFactRepository(db)

	batch := models.FactBatch{
		SiteID: "site-1",
		From:   factFrom,
		To:     factTo,
		Traffic: []models.TrafficFact{
			{Date: factTo, PageURL: "/a", Users: 3, Pageviews: 5, Sessions: 4, AvgSessionDuration: 31.2, BounceRate: 0.5},
		},
		Revenue: []models.RevenueFact{
			{Date: factTo, PageURL: "/a", Revenue: 0.0123, Impressions: 7, Clicks: 0, CTR: 0, RPM: 1.76},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM page_daily_metrics WHERE site_id = ? AND date >= ? AND date <= ?")).
		WithArgs("site-1", "2025-03-04", "2025-03-10").
		WillReturnResult(sqlmock.NewResult(0, 30))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM revenue_daily_metrics WHERE site_id = ? AND date >= ? AND date <= ?")).
		WillReturnResult(sqlmock.NewResult(0, 30))
	mock.ExpectPrepare("INSERT INTO page_daily_metrics").
		ExpectExec().
		WithArgs("site-1", "2025-03-10", "/a", int64(3), int64(5), int64(4), 31.2, 0.5).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectPrepare("INSERT INTO revenue_daily_metrics").
		ExpectExec().
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceFacts(context.Background(), batch))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceFactsRollsBackOnInsertFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFactRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM page_daily_metrics").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM revenue_daily_metrics").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare("INSERT INTO page_daily_metrics").
		ExpectExec().
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.ReplaceFacts(context.Background(), models.FactBatch{
		SiteID:  "site-1",
		From:    factFrom,
		To:      factTo,
		Traffic: []models.TrafficFact{{Date: factTo, PageURL: "/a"}},
	})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
