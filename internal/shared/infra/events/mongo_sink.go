package events

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	sharedBus "github.com/davicafu/docsearch/internal/shared/infra/platform/bus"
)

const mongoEventsCollection = "document_events"

// MongoSink archiva cada evento en una colección. El _id es el event_id, así que
// reentregas del publisher sobrescriben el mismo documento.
type MongoSink struct {
	coll *mongo.Collection
	log  *zap.Logger
}

// Se definen localmente para no "contaminar" el dominio con tags de BSON.
type mongoEvent struct {
	ID          string    `bson:"_id"`
	EventType   string    `bson:"eventType"`
	Key         string    `bson:"key"`
	Envelope    bson.M    `bson:"envelope,omitempty"`
	RawPayload  string    `bson:"rawPayload,omitempty"`
	CreatedAt   time.Time `bson:"createdAt"`
	PublishedAt time.Time `bson:"publishedAt"`
}

func NewMongoSink(ctx context.Context, client *mongo.Client, dbName string, log *zap.Logger) (*MongoSink, error) {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}
	return newMongoSink(client.Database(dbName).Collection(mongoEventsCollection), log), nil
}

func newMongoSink(coll *mongo.Collection, log *zap.Logger) *MongoSink {
	return &MongoSink{coll: coll, log: log}
}

// toMongoEvent guarda el sobre como documento BSON; un payload que no es un
// objeto JSON se archiva tal cual en rawPayload para no bloquear la cola.
func toMongoEvent(msg sharedBus.Message, publishedAt time.Time) (mongoEvent, error) {
	doc := mongoEvent{
		ID:          msg.ID.String(),
		EventType:   msg.EventType,
		Key:         msg.Key,
		CreatedAt:   msg.CreatedAt,
		PublishedAt: publishedAt,
	}

	var envelope bson.M
	if err := bson.UnmarshalExtJSON(msg.Payload, false, &envelope); err != nil {
		doc.RawPayload = string(msg.Payload)
		return doc, err
	}
	doc.Envelope = envelope
	return doc, nil
}

func (s *MongoSink) Publish(ctx context.Context, msg sharedBus.Message) error {
	doc, convErr := toMongoEvent(msg, time.Now().UTC())
	if convErr != nil {
		s.log.Warn("payload is not a JSON object, archiving raw",
			zap.String("event_id", doc.ID),
			zap.Error(convErr),
		)
	}

	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to store event in mongo: %w", err)
	}
	return nil
}

var _ sharedBus.EventBus = (*MongoSink)(nil)
