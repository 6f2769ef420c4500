package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"otprelay/internal/database"
	"otprelay/internal/models"
	"otprelay/internal/utils"
)

// ChallengeRepository persists OTP challenges keyed by subject email.
// At most one live challenge exists per email: Replace removes any prior
// entry for the subject before inserting the new one.
type ChallengeRepository interface {
	Replace(ctx context.Context, challenge *models.Challenge) (*models.Challenge, error)
	FindLiveByEmail(ctx context.Context, email string) (*models.Challenge, error)
	MarkConsumed(ctx context.Context, challengeID primitive.ObjectID) (bool, error)
	IncrementAttempts(ctx context.Context, challengeID primitive.ObjectID) error
	Delete(ctx context.Context, challengeID primitive.ObjectID) error
	DeleteExpired(ctx context.Context) error
}

type challengeRepository struct {
	db database.Service
}

func NewChallengeRepository(db database.Service) ChallengeRepository {
	return &challengeRepository{db: db}
}

func (r *challengeRepository) collection() *mongo.Collection {
	return r.db.Client().Database("otprelay").Collection("challenges")
}

func (r *challengeRepository) Replace(ctx context.Context, challenge *models.Challenge) (*models.Challenge, error) {
	queryType := "replace"
	repository := "challenge"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	// Superseding delete: once a new code is issued, the previous one
	// for the same subject must stop validating.
	if _, err := r.collection().DeleteMany(ctx, bson.M{"email": challenge.Email}); err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		log.Error().Err(err).Str("email", challenge.Email).Msg("Failed to remove superseded challenges")
		return nil, fmt.Errorf("failed to remove superseded challenges: %w", err)
	}

	challenge.ID = primitive.NewObjectID()
	challenge.CreatedAt = time.Now()
	if _, err := r.collection().InsertOne(ctx, challenge); err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		log.Error().Err(err).Str("email", challenge.Email).Msg("Failed to insert challenge")
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}
	return challenge, nil
}

func (r *challengeRepository) FindLiveByEmail(ctx context.Context, email string) (*models.Challenge, error) {
	queryType := "findLiveByEmail"
	repository := "challenge"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	var challenge models.Challenge
	filter := bson.M{"email": email, "consumed": false, "expires_at": bson.M{"$gt": time.Now()}}
	err := r.collection().FindOne(ctx, filter).Decode(&challenge)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, err
	}
	return &challenge, nil
}

// MarkConsumed flips consumed on a still-live challenge. The filter repeats
// the liveness conditions so two concurrent verifications cannot both win.
func (r *challengeRepository) MarkConsumed(ctx context.Context, challengeID primitive.ObjectID) (bool, error) {
	queryType := "markConsumed"
	repository := "challenge"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	filter := bson.M{"_id": challengeID, "consumed": false, "expires_at": bson.M{"$gt": time.Now()}}
	update := bson.M{"$set": bson.M{"consumed": true}}
	result, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

func (r *challengeRepository) IncrementAttempts(ctx context.Context, challengeID primitive.ObjectID) error {
	queryType := "incrementAttempts"
	repository := "challenge"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	update := bson.M{"$inc": bson.M{"attempts": 1}}
	_, err := r.collection().UpdateOne(ctx, bson.M{"_id": challengeID}, update)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
	}
	return err
}

func (r *challengeRepository) Delete(ctx context.Context, challengeID primitive.ObjectID) error {
	queryType := "delete"
	repository := "challenge"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	_, err := r.collection().DeleteOne(ctx, bson.M{"_id": challengeID})
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		log.Error().Err(err).Str("challenge_id", challengeID.Hex()).Msg("Failed to delete challenge")
	}
	return err
}

func (r *challengeRepository) DeleteExpired(ctx context.Context) error {
	queryType := "deleteExpired"
	repository := "challenge"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	filter := bson.M{"$or": []bson.M{
		{"expires_at": bson.M{"$lt": time.Now()}},
		{"consumed": true},
	}}
	_, err := r.collection().DeleteMany(ctx, filter)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
	}
	return err
}
