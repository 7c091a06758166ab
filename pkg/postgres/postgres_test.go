package postgres

import (
	"testing"

	"github.com/DRSN-tech/product-intelligence/internal/cfg"
	"github.com/DRSN-tech/product-intelligence/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	got := DSN(&cfg.PGDBCfg{
		Host:     "db",
		Port:     "5432",
		User:     "pie",
		Password: "secret",
		DBName:   "catalog",
		SSLMode:  "disable",
	})

	assert.Equal(t, "host=db port=5432 user=pie password=secret dbname=catalog sslmode=disable", got)
}

func TestRunMigrations_Disabled(t *testing.T) {
	db := NewPgDatabase(nil, &cfg.PGDBCfg{RunMigrations: false}, "host=nowhere")

	require.NoError(t, db.RunMigrations(logger.NewNop()))
}
