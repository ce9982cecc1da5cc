package photometa

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/kozaktomas/photo-faces/internal/identity"
)

// MariaDB writes photo-face associations directly into the photo
// application's MariaDB. The application owns the photo_faces table:
//
//	photo_uid VARCHAR(64) PRIMARY KEY,
//	face_ids JSON, main_face_id VARCHAR(191), boxes JSON,
//	updated_at TIMESTAMP
type MariaDB struct {
	db *sql.DB
}

// NewMariaDB creates a sink over the application database DSN.
func NewMariaDB(dsn string) (*MariaDB, error) {
	if dsn == "" {
		return nil, errors.New("photo database DSN is required")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open photo database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping photo database: %w", err)
	}

	return &MariaDB{db: db}, nil
}

// Close closes the connection pool.
func (m *MariaDB) Close() error {
	if m.db != nil {
		if err := m.db.Close(); err != nil {
			return fmt.Errorf("closing photo database connection: %w", err)
		}
	}
	return nil
}

// SavePhotoFaces upserts the face association for a photo.
func (m *MariaDB) SavePhotoFaces(ctx context.Context, photoUID string, result *identity.PhotoResult) error {
	faceIDs, err := json.Marshal(result.FaceIDs)
	if err != nil {
		return fmt.Errorf("marshal face ids: %w", err)
	}
	boxes, err := json.Marshal(result.Boxes)
	if err != nil {
		return fmt.Errorf("marshal boxes: %w", err)
	}

	query := `
		INSERT INTO photo_faces (photo_uid, face_ids, main_face_id, boxes, updated_at)
		VALUES (?, ?, ?, ?, NOW())
		ON DUPLICATE KEY UPDATE
			face_ids = VALUES(face_ids),
			main_face_id = VALUES(main_face_id),
			boxes = VALUES(boxes),
			updated_at = NOW()
	`
	if _, err := m.db.ExecContext(ctx, query, photoUID, faceIDs, result.MainFaceID, boxes); err != nil {
		return fmt.Errorf("save photo faces for %s: %w", photoUID, err)
	}
	return nil
}
