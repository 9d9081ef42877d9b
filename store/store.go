// Package store owns the document-store connection lifecycle and the
// typed collection accessors the Moderation Pipeline reads and writes.
//
// Grounded on the teacher's db/db.go connection-lifecycle idiom (dial,
// ping under a bounded context, return a ready-to-use handle) and on
// other_examples' mongo_test.go.go for idiomatic mongo-driver Go usage
// (New(ctx, cfg) constructor, context-scoped operations, typed errors).
package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"examengine/models"
)

// Store wraps a connected database handle and exposes the six
// wire-contract collections by name.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials MongoDB using uri (which names the database), pinging
// it under a bounded context before returning. Mirrors the teacher's
// InitDB: dial, ping, return.
func Connect(ctx context.Context, uri string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	dbName, err := databaseName(uri)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return &Store{client: client, db: client.Database(dbName)}, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Exams() *mongo.Collection       { return s.db.Collection(models.CollectionExam) }
func (s *Store) Attempts() *mongo.Collection    { return s.db.Collection(models.CollectionAttempt) }
func (s *Store) Generations() *mongo.Collection { return s.db.Collection(models.CollectionGeneratedExam) }
func (s *Store) Moderations() *mongo.Collection { return s.db.Collection(models.CollectionModeration) }
func (s *Store) Challenges() *mongo.Collection  { return s.db.Collection(models.CollectionChallenge) }
func (s *Store) Users() *mongo.Collection       { return s.db.Collection(models.CollectionUser) }

// FindExam fetches one Exam by id.
func (s *Store) FindExam(ctx context.Context, id any) (models.Exam, error) {
	var exam models.Exam
	err := s.Exams().FindOne(ctx, bson.M{"_id": id}).Decode(&exam)
	return exam, err
}

// FindGeneratedExam fetches one Generation by id.
func (s *Store) FindGeneratedExam(ctx context.Context, id any) (models.GeneratedExam, error) {
	var gen models.GeneratedExam
	err := s.Generations().FindOne(ctx, bson.M{"_id": id}).Decode(&gen)
	return gen, err
}

// FindUser fetches one User by id.
func (s *Store) FindUser(ctx context.Context, id any) (models.User, error) {
	var u models.User
	err := s.Users().FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	return u, err
}

// FindChallengeByExam fetches the Challenge mapping an exam to its
// awarded certification, per §4.7 T4.
func (s *Store) FindChallengeByExam(ctx context.Context, examID any) (models.Challenge, error) {
	var c models.Challenge
	err := s.Challenges().FindOne(ctx, bson.M{"examId": examID}).Decode(&c)
	return c, err
}

// databaseName extracts the database name a mongo:// URI points at, the
// way MONGODB_URI is documented to carry it (§6).
func databaseName(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("store: parse MONGODB_URI: %w", err)
	}
	name := strings.TrimPrefix(u.Path, "/")
	if name == "" {
		return "", fmt.Errorf("store: MONGODB_URI must name a database in its path")
	}
	return name, nil
}
