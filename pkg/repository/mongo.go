package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/storefront/pkg/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AuditLog records one domain event against the entity it touched.
type AuditLog struct {
	ID         string    `bson:"_id,omitempty" json:"-"`
	Action     string    `bson:"action" json:"action"`
	EntityType string    `bson:"entity_type" json:"entityType"`
	EntityID   int64     `bson:"entity_id" json:"entityId"`
	UserID     int64     `bson:"user_id,omitempty" json:"userId,omitempty"`
	Data       bson.M    `bson:"data" json:"data"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}

type AuditLogger interface {
	CreateAuditLog(ctx context.Context, log *AuditLog) error
	GetAuditLogs(ctx context.Context, entityType string, entityID int64, limit int64) ([]*AuditLog, error)
}

type MongoRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoRepository(cfg *config.MongoDBConfig) (*MongoRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	return &MongoRepository{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (m *MongoRepository) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *MongoRepository) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *MongoRepository) CreateAuditLog(ctx context.Context, log *AuditLog) error {
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	_, err := m.collection.InsertOne(ctx, log)
	return err
}

// GetAuditLogs returns the newest entries for the entity first.
func (m *MongoRepository) GetAuditLogs(ctx context.Context, entityType string, entityID int64, limit int64) ([]*AuditLog, error) {
	filter := bson.M{"entity_type": entityType, "entity_id": entityID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)

	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	logs := make([]*AuditLog, 0)
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}

	return logs, nil
}

// MemoryAudit keeps audit entries in process memory when no MongoDB is configured.
type MemoryAudit struct {
	mu   sync.Mutex
	logs []AuditLog
}

func NewMemoryAudit() *MemoryAudit {
	return &MemoryAudit{}
}

func (m *MemoryAudit) CreateAuditLog(ctx context.Context, log *AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	m.logs = append(m.logs, *log)
	return nil
}

func (m *MemoryAudit) GetAuditLogs(ctx context.Context, entityType string, entityID int64, limit int64) ([]*AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*AuditLog, 0)
	for i := len(m.logs) - 1; i >= 0; i-- {
		if m.logs[i].EntityType == entityType && m.logs[i].EntityID == entityID {
			l := m.logs[i]
			out = append(out, &l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}
