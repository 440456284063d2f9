package scheduler

import (
	"testing"

	"github.com/pricefolio/pricefolio/internal/database"
	testingutil "github.com/pricefolio/pricefolio/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestCheckWALCheckpointsJob(t *testing.T) {
	portfolioDB := testingutil.NewTestDB(t, database.NamePortfolio)
	clientDB := testingutil.NewTestDB(t, database.NameClientData)

	job := NewCheckWALCheckpointsJob(zerolog.Nop(), portfolioDB, nil, clientDB)
	assert.Equal(t, "check_wal_checkpoints", job.Name())
	assert.Len(t, job.databases, 2)
	assert.NoError(t, job.Run())
}

func TestCheckDatabasesJob(t *testing.T) {
	job := NewCheckDatabasesJob(zerolog.Nop(),
		testingutil.NewTestDB(t, database.NamePortfolio),
		testingutil.NewTestDB(t, database.NameClientData),
	)
	assert.Equal(t, "check_databases", job.Name())
	assert.NoError(t, job.Run())
}
