package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrMalformedEnvelope     = errors.New("malformed event envelope")
	ErrMissingCorrelationKey = errors.New("event data has no document_id")
)

// Kind identifica una variante del contrato: consumidores ramifican por (type, schema_version).
type Kind struct {
	Type          string
	SchemaVersion int
}

// EventTypeName es el valor que se guarda en la columna event_type del ledger.
func (k Kind) EventTypeName() string {
	return fmt.Sprintf("%s.v%d", k.Type, k.SchemaVersion)
}

// Meta acompaña a todos los eventos de integración.
type Meta struct {
	EventID       uuid.UUID `json:"event_id"`
	OccurredAt    time.Time `json:"occurred_at"`
	Producer      string    `json:"producer"`
	SchemaVersion int       `json:"schema_version"`
}

// Envelope es el formato de cable de cualquier evento.
type Envelope struct {
	Type string          `json:"type"`
	Meta Meta            `json:"meta"`
	Data json.RawMessage `json:"data"`
}

// Event es la unión etiquetada de variantes conocidas (más Unknown).
type Event interface {
	Kind() Kind
	EventMeta() Meta
}

// Unknown conserva un sobre bien formado cuya variante no reconocemos.
type Unknown struct {
	Type string
	Meta Meta
	Data json.RawMessage
}

func (u Unknown) Kind() Kind      { return Kind{Type: u.Type, SchemaVersion: u.Meta.SchemaVersion} }
func (u Unknown) EventMeta() Meta { return u.Meta }

// wire* se usan sólo para validar antes de construir los tipos fuertes.
type wireMeta struct {
	EventID       string `json:"event_id" validate:"required"`
	OccurredAt    string `json:"occurred_at" validate:"required"`
	Producer      string `json:"producer"`
	SchemaVersion int    `json:"schema_version" validate:"required,gt=0"`
}

type wireEnvelope struct {
	Type string          `json:"type" validate:"required"`
	Meta wireMeta        `json:"meta"`
	Data json.RawMessage `json:"data"`
}

var validate = validator.New()

// Decode valida el sobre y devuelve la variante tipada correspondiente.
// Variantes desconocidas no son error: se devuelven como Unknown.
func Decode(raw []byte) (Event, error) {
	var w wireEnvelope
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if err := validate.Struct(w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	occurredAt, err := time.Parse(time.RFC3339Nano, w.Meta.OccurredAt)
	if err != nil {
		return nil, fmt.Errorf("%w: occurred_at: %v", ErrMalformedEnvelope, err)
	}

	// uuid.Parse acepta mayúsculas y minúsculas.
	eventID, err := uuid.Parse(w.Meta.EventID)
	if err != nil {
		return nil, fmt.Errorf("%w: event_id: %v", ErrMalformedEnvelope, err)
	}

	meta := Meta{
		EventID:       eventID,
		OccurredAt:    occurredAt,
		Producer:      w.Meta.Producer,
		SchemaVersion: w.Meta.SchemaVersion,
	}

	switch (Kind{Type: w.Type, SchemaVersion: meta.SchemaVersion}) {
	case DocumentUpsertedV1Kind:
		return decodeDocumentUpsertedV1(meta, w.Data)
	default:
		return Unknown{Type: w.Type, Meta: meta, Data: w.Data}, nil
	}
}

// CorrelationKey extrae data.document_id sin decodificar el evento completo.
func CorrelationKey(raw []byte) (uuid.UUID, error) {
	var probe struct {
		Data struct {
			DocumentID string `json:"document_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if probe.Data.DocumentID == "" {
		return uuid.Nil, ErrMissingCorrelationKey
	}
	id, err := uuid.Parse(probe.Data.DocumentID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrMissingCorrelationKey, err)
	}
	return id, nil
}
