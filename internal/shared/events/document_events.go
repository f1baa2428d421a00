package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const TypeDocumentUpserted = "document.upserted"

var DocumentUpsertedV1Kind = Kind{Type: TypeDocumentUpserted, SchemaVersion: 1}

// Contrato de integración, plano; no es la entidad Document.
type DocumentUpsertedData struct {
	DocumentID uuid.UUID `json:"document_id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type DocumentUpsertedV1 struct {
	Meta Meta
	Data DocumentUpsertedData
}

func (e DocumentUpsertedV1) Kind() Kind      { return DocumentUpsertedV1Kind }
func (e DocumentUpsertedV1) EventMeta() Meta { return e.Meta }

// PartitionKey mantiene los eventos de un mismo documento en la misma partición.
func (e DocumentUpsertedV1) PartitionKey() string { return e.Data.DocumentID.String() }

// MarshalJSON produce el sobre completo.
func (e DocumentUpsertedV1) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: TypeDocumentUpserted, Meta: e.Meta, Data: data})
}

// NewDocumentUpsertedV1 rellena meta con un event_id nuevo.
func NewDocumentUpsertedV1(producer string, data DocumentUpsertedData) DocumentUpsertedV1 {
	return DocumentUpsertedV1{
		Meta: Meta{
			EventID:       uuid.New(),
			OccurredAt:    time.Now().UTC(),
			Producer:      producer,
			SchemaVersion: DocumentUpsertedV1Kind.SchemaVersion,
		},
		Data: data,
	}
}

func decodeDocumentUpsertedV1(meta Meta, raw json.RawMessage) (Event, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, ErrMissingCorrelationKey
	}

	var w struct {
		DocumentID string  `json:"document_id"`
		Title      string  `json:"title"`
		Body       string  `json:"body"`
		UpdatedAt  *string `json:"updated_at"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("%w: data: %v", ErrMalformedEnvelope, err)
	}
	if w.DocumentID == "" {
		return nil, ErrMissingCorrelationKey
	}
	id, err := uuid.Parse(w.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingCorrelationKey, err)
	}
	if w.UpdatedAt == nil {
		return nil, fmt.Errorf("%w: data.updated_at is required", ErrMalformedEnvelope)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, *w.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: data.updated_at: %v", ErrMalformedEnvelope, err)
	}

	return DocumentUpsertedV1{
		Meta: meta,
		Data: DocumentUpsertedData{DocumentID: id, Title: w.Title, Body: w.Body, UpdatedAt: updatedAt},
	}, nil
}
