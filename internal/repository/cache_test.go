package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renovation-matching/internal/common/logger"
	"renovation-matching/internal/models"
)

type MockCompanyRepository struct {
	ListEligibleFunc func(ctx context.Context) ([]models.Company, error)
	calls            int
}

func (m *MockCompanyRepository) ListEligible(ctx context.Context) ([]models.Company, error) {
	m.calls++
	return m.ListEligibleFunc(ctx)
}

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func roster() []models.Company {
	return []models.Company{
		{ID: "c-1", Name: "One", Activities: []string{"5.4"}, Status: models.CompanyStatusActive, VerificationStatus: models.VerificationVerified},
		{ID: "c-2", Name: "Two", Activities: []string{"5.1"}, Status: models.CompanyStatusActive, VerificationStatus: models.VerificationVerified},
	}
}

func TestCachedCompanyRepository_MissThenHit(t *testing.T) {
	mr, client := setupMiniredis(t)
	inner := &MockCompanyRepository{ListEligibleFunc: func(context.Context) ([]models.Company, error) {
		return roster(), nil
	}}
	repo := NewCachedCompanyRepository(inner, client, 5*time.Minute, logger.NewTestLogger(t))
	ctx := context.Background()

	first, err := repo.ListEligible(ctx)
	require.NoError(t, err)
	assert.Len(t, first, 2)
	assert.Equal(t, 1, inner.calls)
	assert.True(t, mr.Exists(RosterCacheKey))
	assert.Equal(t, 5*time.Minute, mr.TTL(RosterCacheKey))

	second, err := repo.ListEligible(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls, "second lookup is served from redis")
	assert.Equal(t, first, second)
}

func TestCachedCompanyRepository_Expiry(t *testing.T) {
	mr, client := setupMiniredis(t)
	inner := &MockCompanyRepository{ListEligibleFunc: func(context.Context) ([]models.Company, error) {
		return roster(), nil
	}}
	repo := NewCachedCompanyRepository(inner, client, time.Minute, nil)
	ctx := context.Background()

	_, err := repo.ListEligible(ctx)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	_, err = repo.ListEligible(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedCompanyRepository_Invalidate(t *testing.T) {
	mr, client := setupMiniredis(t)
	inner := &MockCompanyRepository{ListEligibleFunc: func(context.Context) ([]models.Company, error) {
		return roster(), nil
	}}
	repo := NewCachedCompanyRepository(inner, client, time.Hour, nil)
	ctx := context.Background()

	_, err := repo.ListEligible(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Invalidate(ctx))
	assert.False(t, mr.Exists(RosterCacheKey))

	_, err = repo.ListEligible(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedCompanyRepository_CorruptEntryIsIgnored(t *testing.T) {
	mr, client := setupMiniredis(t)
	require.NoError(t, mr.Set(RosterCacheKey, "{not json"))

	inner := &MockCompanyRepository{ListEligibleFunc: func(context.Context) ([]models.Company, error) {
		return roster(), nil
	}}
	repo := NewCachedCompanyRepository(inner, client, time.Hour, logger.NewTestLogger(t))

	companies, err := repo.ListEligible(context.Background())
	require.NoError(t, err)
	assert.Len(t, companies, 2)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedCompanyRepository_InnerErrorIsNotCached(t *testing.T) {
	mr, client := setupMiniredis(t)
	innerErr := errors.New("database down")
	inner := &MockCompanyRepository{ListEligibleFunc: func(context.Context) ([]models.Company, error) {
		return nil, innerErr
	}}
	repo := NewCachedCompanyRepository(inner, client, time.Hour, nil)

	_, err := repo.ListEligible(context.Background())
	assert.ErrorIs(t, err, innerErr)
	assert.False(t, mr.Exists(RosterCacheKey))
}

func TestCachedCompanyRepository_RedisFailureFallsThrough(t *testing.T) {
	client, redisMock := redismock.NewClientMock()

	companies := roster()
	data, err := json.Marshal(companies)
	require.NoError(t, err)

	redisMock.ExpectGet(RosterCacheKey).SetErr(errors.New("connection reset"))
	redisMock.ExpectSet(RosterCacheKey, data, 10*time.Minute).SetErr(errors.New("connection reset"))

	inner := &MockCompanyRepository{ListEligibleFunc: func(context.Context) ([]models.Company, error) {
		return companies, nil
	}}
	repo := NewCachedCompanyRepository(inner, client, 10*time.Minute, logger.NewTestLogger(t))

	got, err := repo.ListEligible(context.Background())
	require.NoError(t, err)
	assert.Equal(t, companies, got)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}
