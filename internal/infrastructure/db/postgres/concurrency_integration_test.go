//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/participation"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/listing-service/migrations"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now().UTC() }

func setupPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	pg, err := tcpostgres.Run(ctx, "postgres:17",
		tcpostgres.WithDatabase("listing"),
		tcpostgres.WithUsername("listing"),
		tcpostgres.WithPassword("listing"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("Skipping integration test because Postgres could not start: %v", err)
	}
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(20)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(ctx, db, migrations.FS))
	return db
}

func seedUsers(t *testing.T, db *sql.DB, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id := uuid.NewString()
		_, err := db.Exec(`INSERT INTO users (id, name, email) VALUES ($1, $2, $3)`,
			id, fmt.Sprintf("user %d", i), fmt.Sprintf("user%d-%s@example.com", i, id[:8]))
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func seedPublishedEvent(t *testing.T, db *sql.DB, initiatorID string, limit int, moderation bool) string {
	t.Helper()
	catID := uuid.NewString()
	_, err := db.Exec(`INSERT INTO categories (id, name) VALUES ($1, $2)`, catID, "cat-"+catID[:8])
	require.NoError(t, err)

	now := time.Now().UTC()
	pub := now.Add(-time.Minute)
	e := &domain.Event{
		ID: uuid.NewString(), InitiatorID: initiatorID, CategoryID: catID,
		Title: "Harbour Run", Annotation: "A relaxed morning run around the harbour",
		Description: "Meet at the ferry wharf, 5km loop, coffee afterwards.",
		EventDate:   now.Add(48 * time.Hour), ParticipantLimit: limit, RequestModeration: moderation,
		State: domain.StatePublished, CreatedOn: now, PublishedOn: &pub, UpdatedAt: now,
	}
	require.NoError(t, NewEventRepo(db).Create(context.Background(), e))
	return e.ID
}

func countByStatus(t *testing.T, db *sql.DB, eventID string, st domain.RequestStatus) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM participation_requests WHERE event_id = $1 AND status = $2`,
		eventID, string(st),
	).Scan(&n))
	return n
}

func TestIntegration_ConcurrentAdmissionsRespectLimit(t *testing.T) {
	db := setupPostgres(t)
	users := seedUsers(t, db, 21)
	eventID := seedPublishedEvent(t, db, users[0], 1, false)

	svc := participation.New(NewRequestRepo(db), NewDirectory(db), wallClock{})

	var wg sync.WaitGroup
	for _, u := range users[1:] {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			_, _ = svc.CreateRequest(context.Background(), u, eventID)
		}(u)
	}
	wg.Wait()

	assert.Equal(t, 1, countByStatus(t, db, eventID, domain.RequestConfirmed))

	var outbox int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM event_outbox`).Scan(&outbox))
	assert.Equal(t, 1, outbox)
}

func TestIntegration_ConcurrentBatchConfirms(t *testing.T) {
	db := setupPostgres(t)
	users := seedUsers(t, db, 7)
	eventID := seedPublishedEvent(t, db, users[0], 3, true)

	svc := participation.New(NewRequestRepo(db), NewDirectory(db), wallClock{})
	var ids []string
	for _, u := range users[1:] {
		r, err := svc.CreateRequest(context.Background(), u, eventID)
		require.NoError(t, err)
		require.Equal(t, domain.RequestPending, r.Status)
		ids = append(ids, r.ID)
	}

	// two initiator sessions race over overlapping batches
	var wg sync.WaitGroup
	for _, batch := range [][]string{ids[:4], ids[2:]} {
		wg.Add(1)
		go func(batch []string) {
			defer wg.Done()
			_, _ = svc.UpdateRequestStatus(context.Background(), participation.UpdateStatusCmd{
				ActorID: users[0], EventID: eventID, RequestIDs: batch, Status: domain.RequestConfirmed,
			})
		}(batch)
	}
	wg.Wait()

	assert.LessOrEqual(t, countByStatus(t, db, eventID, domain.RequestConfirmed), 3)
}

func TestIntegration_DuplicateRequestIsConflict(t *testing.T) {
	db := setupPostgres(t)
	users := seedUsers(t, db, 2)
	eventID := seedPublishedEvent(t, db, users[0], 0, true)

	svc := participation.New(NewRequestRepo(db), NewDirectory(db), wallClock{})
	_, err := svc.CreateRequest(context.Background(), users[1], eventID)
	require.NoError(t, err)

	_, err = svc.CreateRequest(context.Background(), users[1], eventID)
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))
}
