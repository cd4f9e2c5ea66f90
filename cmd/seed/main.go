package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/vidtube/backend/config"
	"github.com/vidtube/backend/pkg/helpers"
)

// Seeds two channels, a subscription edge between them and one watched video
// so the profile and history endpoints have something to show locally.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	aliceID := seedUser(db, "alice", "alice@example.com", "Alice Doe", "password123")
	bobID := seedUser(db, "bob", "bob@example.com", "Bob Roe", "password123")

	if _, err := db.Exec(`
		INSERT INTO subscriptions (subscriber_id, channel_id)
		VALUES ($1, $2)
		ON CONFLICT (subscriber_id, channel_id) DO NOTHING
	`, bobID, aliceID); err != nil {
		log.Fatalf("failed to seed subscription: %v", err)
	}

	var videoID string
	if err := db.QueryRow(`
		INSERT INTO videos (owner_id, title, description, video_url, thumbnail_url, duration_seconds)
		VALUES ($1, 'Hello VidTube', 'First upload', 'https://example.com/v/hello.mp4', '', 42)
		RETURNING id
	`, aliceID).Scan(&videoID); err != nil {
		log.Fatalf("failed to seed video: %v", err)
	}

	if _, err := db.Exec(`
		INSERT INTO watch_history (user_id, video_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, video_id) DO UPDATE SET watched_at = now()
	`, bobID, videoID); err != nil {
		log.Fatalf("failed to seed watch history: %v", err)
	}

	fmt.Printf("seeded users alice=%s bob=%s, bob subscribes to alice, bob watched %s\n", aliceID, bobID, videoID)
}

func seedUser(db *sql.DB, username, email, fullname, password string) string {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	var id string
	if err := db.QueryRow(`
		INSERT INTO users (username, email, fullname, password_hash, avatar_url)
		VALUES ($1, $2, $3, $4, '')
		ON CONFLICT (username) DO UPDATE SET fullname = EXCLUDED.fullname
		RETURNING id
	`, username, email, fullname, hash).Scan(&id); err != nil {
		log.Fatalf("failed to seed user %s: %v", username, err)
	}
	return id
}
