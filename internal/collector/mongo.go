package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"PortfolioPulse/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const investorsCollection = "investors"

// MongoSource reads the investors collection of the document store.
type MongoSource struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoSource connects and pings the server.
func NewMongoSource(ctx context.Context, uri, database string) (*MongoSource, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	log.Printf("[INFO] mongo source connected: database %s", database)
	return &MongoSource{client: client, coll: client.Database(database).Collection(investorsCollection)}, nil
}

func (m *MongoSource) Name() string { return "mongo" }

func (m *MongoSource) List(ctx context.Context, limit int) ([]model.Investor, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 0}).
		SetSort(bson.D{{Key: "investor_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := m.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find investors: %w", err)
	}
	defer cur.Close(ctx)

	var investors []model.Investor
	for cur.Next(ctx) {
		inv, err := decodeInvestor(cur.Current)
		if err != nil {
			log.Printf("[WARN] skipping undecodable investor document: %v", err)
			continue
		}
		investors = append(investors, *inv)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate investors: %w", err)
	}
	return investors, nil
}

func (m *MongoSource) Get(ctx context.Context, investorID string) (*model.Investor, error) {
	raw, err := m.coll.FindOne(ctx, bson.M{"investor_id": investorID},
		options.FindOne().SetProjection(bson.M{"_id": 0})).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrInvestorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find investor %s: %w", investorID, err)
	}
	return decodeInvestor(raw)
}

func (m *MongoSource) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// decodeInvestor goes through relaxed Extended JSON so the same lenient number handling applies
// to Mongo documents and JSON files.
func decodeInvestor(raw bson.Raw) (*model.Investor, error) {
	data, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, fmt.Errorf("convert bson: %w", err)
	}
	var inv model.Investor
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("decode investor: %w", err)
	}
	return &inv, nil
}
