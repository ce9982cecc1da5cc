//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kozaktomas/photo-faces/internal/config"
	"github.com/kozaktomas/photo-faces/internal/constants"
	"github.com/kozaktomas/photo-faces/internal/identity"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}
	if container == nil {
		t.Skip("Docker not available, skipping integration test")
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dbURL := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	cfg := &config.DatabaseConfig{
		URL:          dbURL,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	pool, err := NewPool(cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}

	return pool, cleanup
}

func testEmbedding(x float32) []float32 {
	e := make([]float32, constants.EmbeddingDim)
	e[0] = x
	return e
}

func TestIdentityRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewIdentityRepository(pool)

	t.Run("CreateAndList", func(t *testing.T) {
		box := identity.BoundingBox{X: 10, Y: 20, Width: 100, Height: 120}
		if err := repo.CreateIdentity(ctx, "", "person_1", testEmbedding(0.1), box); err != nil {
			t.Fatalf("Failed to create identity: %v", err)
		}
		if err := repo.CreateIdentity(ctx, "", "person_2", testEmbedding(0.9), box); err != nil {
			t.Fatalf("Failed to create identity: %v", err)
		}

		identities, err := repo.ListIdentities(ctx, "")
		if err != nil {
			t.Fatalf("Failed to list identities: %v", err)
		}
		if len(identities) != 2 {
			t.Fatalf("Expected 2 identities, got %d", len(identities))
		}
		if identities[0].ID != "person_1" || identities[1].ID != "person_2" {
			t.Errorf("Order = [%s %s], want [person_1 person_2]", identities[0].ID, identities[1].ID)
		}
		if len(identities[0].Samples) != 1 {
			t.Errorf("Expected 1 sample, got %d", len(identities[0].Samples))
		}
		if len(identities[0].Samples[0]) != constants.EmbeddingDim {
			t.Errorf("Expected %d dimensions, got %d", constants.EmbeddingDim, len(identities[0].Samples[0]))
		}
	})

	t.Run("DuplicateCreateFails", func(t *testing.T) {
		err := repo.CreateIdentity(ctx, "", "person_1", testEmbedding(0.2), identity.BoundingBox{})
		if err == nil {
			t.Error("Expected duplicate create to fail")
		}
	})

	t.Run("AppendSample", func(t *testing.T) {
		if err := repo.AppendSample(ctx, "", "person_1", testEmbedding(0.15), identity.BoundingBox{Width: 50, Height: 50}); err != nil {
			t.Fatalf("Failed to append sample: %v", err)
		}

		identities, err := repo.ListIdentities(ctx, "")
		if err != nil {
			t.Fatalf("Failed to list identities: %v", err)
		}
		if len(identities[0].Samples) != 2 {
			t.Errorf("Expected 2 samples, got %d", len(identities[0].Samples))
		}

		if err := repo.AppendSample(ctx, "", "person_99", testEmbedding(0.5), identity.BoundingBox{}); err == nil {
			t.Error("Expected append to missing identity to fail")
		}
	})

	t.Run("SetThumbnail", func(t *testing.T) {
		if err := repo.SetThumbnail(ctx, "", "person_1", "abc.jpg"); err != nil {
			t.Fatalf("Failed to set thumbnail: %v", err)
		}

		identities, _ := repo.ListIdentities(ctx, "")
		if identities[0].ThumbnailRef != "abc.jpg" {
			t.Errorf("Thumbnail ref = %q, want abc.jpg", identities[0].ThumbnailRef)
		}

		if err := repo.SetThumbnail(ctx, "", "person_99", "x.jpg"); err == nil {
			t.Error("Expected thumbnail on missing identity to fail")
		}
	})

	t.Run("SetDisplayName", func(t *testing.T) {
		if err := repo.SetDisplayName(ctx, "", "person_1", "Jan Novák"); err != nil {
			t.Fatalf("Failed to set display name: %v", err)
		}

		identities, _ := repo.ListIdentities(ctx, "")
		if identities[0].DisplayName != "Jan Novák" {
			t.Errorf("Display name = %q, want Jan Novák", identities[0].DisplayName)
		}

		if err := repo.SetDisplayName(ctx, "", "person_99", "Bob"); err == nil {
			t.Error("Expected display name on missing identity to fail")
		}
	})

	t.Run("NamespaceIsolation", func(t *testing.T) {
		if err := repo.CreateIdentity(ctx, "wedding", "wedding_person_1", testEmbedding(0.3), identity.BoundingBox{}); err != nil {
			t.Fatalf("Failed to create namespaced identity: %v", err)
		}

		wedding, err := repo.ListIdentities(ctx, "wedding")
		if err != nil {
			t.Fatalf("Failed to list namespace: %v", err)
		}
		if len(wedding) != 1 || wedding[0].ID != "wedding_person_1" {
			t.Errorf("Wedding namespace = %v", wedding)
		}

		count, err := repo.Count(ctx, "")
		if err != nil {
			t.Fatalf("Failed to count: %v", err)
		}
		if count != 2 {
			t.Errorf("Default namespace count = %d, want 2", count)
		}
	})

	t.Run("SampleCount", func(t *testing.T) {
		count, err := repo.SampleCount(ctx, "")
		if err != nil {
			t.Fatalf("Failed to count samples: %v", err)
		}
		if count != 3 {
			t.Errorf("Sample count = %d, want 3", count)
		}
	})
}

func TestMigrations(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()

	applied, err := pool.MigrationsApplied(ctx)
	if err != nil {
		t.Fatalf("Failed to get applied migrations: %v", err)
	}

	expectedMigrations := []string{
		"001_create_identities.sql",
		"002_create_indexes.sql",
	}

	if len(applied) != len(expectedMigrations) {
		t.Errorf("Expected %d migrations, got %d", len(expectedMigrations), len(applied))
	}

	for i, expected := range expectedMigrations {
		if i < len(applied) && applied[i] != expected {
			t.Errorf("Migration %d: expected '%s', got '%s'", i, expected, applied[i])
		}
	}
}
