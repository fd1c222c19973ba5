package repository

import (
	"MenuHub/entity"
	"MenuHub/internal/config"
	"MenuHub/internal/lib/sl"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	apiKeysCollection       = "api-keys"
	webhookEventsCollection = "webhook-events"

	webhookEventsTTL = 30 * 24 * time.Hour
)

// MongoDB keeps service-local data: API keys and the raw webhook archive.
type MongoDB struct {
	ctx           context.Context
	clientOptions *options.ClientOptions
	database      string
	log           *slog.Logger
}

func NewMongoClient(conf *config.Config, logger *slog.Logger) (*MongoDB, error) {
	if !conf.Mongo.Enabled {
		return nil, nil
	}
	connectionUri := fmt.Sprintf("mongodb://%s:%s", conf.Mongo.Host, conf.Mongo.Port)
	clientOptions := options.Client().ApplyURI(connectionUri)
	if conf.Mongo.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.Mongo.User,
			Password:   conf.Mongo.Password,
			AuthSource: conf.Mongo.Database,
		})
	}
	client := &MongoDB{
		ctx:           context.Background(),
		clientOptions: clientOptions,
		database:      conf.Mongo.Database,
		log:           logger.With(sl.Module("mongodb")),
	}
	return client, nil
}

func (m *MongoDB) connect() (*mongo.Client, error) {
	connection, err := mongo.Connect(m.ctx, m.clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect error: %w", err)
	}
	return connection, nil
}

func (m *MongoDB) disconnect(connection *mongo.Client) {
	_ = connection.Disconnect(m.ctx)
}

func (m *MongoDB) findError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	return fmt.Errorf("mongodb find error: %w", err)
}

func (m *MongoDB) CheckApiKey(key string) (*entity.UserAuth, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(apiKeysCollection)
	filter := bson.D{{Key: "key", Value: key}}

	var result entity.UserAuth
	err = collection.FindOne(m.ctx, filter).Decode(&result)
	if err != nil {
		return nil, err
	}

	if result.Username == "" {
		return nil, fmt.Errorf("api key not found")
	}

	return &result, nil
}

func (m *MongoDB) getKeyByUsername(username string) (*entity.UserAuth, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(apiKeysCollection)
	filter := bson.D{{Key: "username", Value: username}}

	var result entity.UserAuth
	err = collection.FindOne(m.ctx, filter).Decode(&result)
	if err != nil {
		if fErr := m.findError(err); fErr != nil {
			return nil, fErr
		}
		return nil, nil
	}

	return &result, nil
}

// GenerateApiKey returns the existing key of username or issues a new one
// scoped to companyID; an empty companyID issues an operator key.
func (m *MongoDB) GenerateApiKey(username, companyID string) (string, error) {
	existing, err := m.getKeyByUsername(username)
	if err != nil {
		return "", fmt.Errorf("failed to get existing API key: %w", err)
	}
	if existing != nil {
		if existing.CompanyID != companyID {
			return "", fmt.Errorf("%w: %s holds a key for another scope", entity.ErrForbidden, username)
		}
		return existing.Token, nil
	}

	connection, err := m.connect()
	if err != nil {
		return "", err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(apiKeysCollection)
	key := uuid.NewString()

	doc := entity.UserAuth{
		Username:  username,
		Token:     key,
		CompanyID: companyID,
	}

	_, err = collection.InsertOne(m.ctx, doc)
	if err != nil {
		return "", fmt.Errorf("mongodb insert error: %w", err)
	}

	return key, nil
}

func (m *MongoDB) ArchiveWebhook(ctx context.Context, event *entity.WebhookEvent) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(webhookEventsCollection)
	if _, err = collection.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("mongodb insert webhook event: %w", err)
	}
	return nil
}

// EnsureIndexes creates the unique key index and the archive TTL index.
func (m *MongoDB) EnsureIndexes() error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	db := connection.Database(m.database)

	_, err = db.Collection(apiKeysCollection).Indexes().CreateMany(m.ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "key", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("mongodb create api key indexes: %w", err)
	}

	_, err = db.Collection(webhookEventsCollection).Indexes().CreateMany(m.ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "instance_key", Value: 1}, {Key: "received_at", Value: -1}}},
		{
			Keys:    bson.D{{Key: "received_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(webhookEventsTTL.Seconds())),
		},
	})
	if err != nil {
		return fmt.Errorf("mongodb create webhook event indexes: %w", err)
	}

	return nil
}
