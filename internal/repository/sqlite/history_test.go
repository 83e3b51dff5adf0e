package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tahmid/codefix/internal/model"
	"github.com/tahmid/codefix/internal/repository"
	"github.com/tahmid/codefix/internal/repository/sqlite"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.New(":memory:")
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	record := &model.RunRecord{
		Language:        "python",
		Filename:        "main.py",
		ReturnCode:      0,
		ExecutedCommand: "/usr/bin/python3 main.py",
		StdoutBytes:     3,
	}

	err := db.Create(ctx, record)
	assert.NoError(t, err)
	assert.NotEmpty(t, record.ID, "Create should assign an ID")
	assert.False(t, record.CreatedAt.IsZero(), "Create should set the timestamp")
}

func TestList(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	t.Run("empty database lists nothing", func(t *testing.T) {
		records, err := db.List(ctx, repository.ListOptions{Limit: 10})
		assert.NoError(t, err)
		assert.Empty(t, records)
	})

	// Seed a few runs. xid IDs are monotonic within a process, so the
	// newest-first ordering is deterministic even with equal timestamps.
	languages := []string{"python", "cpp", "java"}
	for i, lang := range languages {
		err := db.Create(ctx, &model.RunRecord{
			Language:   lang,
			ReturnCode: i,
		})
		assert.NoError(t, err)
	}

	t.Run("newest first", func(t *testing.T) {
		records, err := db.List(ctx, repository.ListOptions{Limit: 10})
		assert.NoError(t, err)
		assert.Len(t, records, 3)
		assert.Equal(t, "java", records[0].Language)
		assert.Equal(t, "python", records[2].Language)
	})

	t.Run("limit and offset paginate", func(t *testing.T) {
		records, err := db.List(ctx, repository.ListOptions{Limit: 1, Offset: 1})
		assert.NoError(t, err)
		assert.Len(t, records, 1)
		assert.Equal(t, "cpp", records[0].Language)
	})

	t.Run("roundtrips all fields", func(t *testing.T) {
		record := &model.RunRecord{
			Language:        "cpp",
			Filename:        "main.cpp",
			ReturnCode:      124,
			ExecutedCommand: "g++ main.cpp -o a_out_exec ; a_out_exec",
			StdoutBytes:     0,
			StderrBytes:     42,
		}
		assert.NoError(t, db.Create(ctx, record))

		records, err := db.List(ctx, repository.ListOptions{Limit: 1})
		assert.NoError(t, err)
		assert.Len(t, records, 1)

		got := records[0]
		assert.Equal(t, record.ID, got.ID)
		assert.Equal(t, "main.cpp", got.Filename)
		assert.Equal(t, 124, got.ReturnCode)
		assert.Equal(t, record.ExecutedCommand, got.ExecutedCommand)
		assert.Equal(t, 42, got.StderrBytes)
	})
}
