package schema

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultSampleSize is how many documents Infer looks at when no size is set.
const DefaultSampleSize = 100

// Inferrer derives a Schema from a bounded document sample.
type Inferrer struct {
	logger     *zap.Logger
	sampleSize int
}

// InferrerOption configures an Inferrer.
type InferrerOption func(*Inferrer)

// WithSampleSize bounds the number of documents considered. Values below one
// mean DefaultSampleSize.
func WithSampleSize(n int) InferrerOption {
	return func(e *Inferrer) {
		if n > 0 {
			e.sampleSize = n
		}
	}
}

// NewInferrer creates an inferrer. A nil logger disables logging.
func NewInferrer(logger *zap.Logger, opts ...InferrerOption) *Inferrer {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Inferrer{
		logger:     logger.With(zap.String("component", "schema_inferrer")),
		sampleSize: DefaultSampleSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SampleSize returns the sample bound.
func (e *Inferrer) SampleSize() int {
	return e.sampleSize
}

// candidate tracks the merged type of one field across the sample.
type candidate struct {
	name  string
	dtype FieldType
}

// Infer classifies every present field of up to SampleSize documents and
// merges the candidates per field. Field order is first-seen order. The
// returned schema is resolved: every field type has a column representation,
// and the merged type is kept in Field.Inferred.
func (e *Inferrer) Infer(docs []primitive.D) (Schema, error) {
	if len(docs) > e.sampleSize {
		docs = docs[:e.sampleSize]
	}

	order := make([]*candidate, 0, 16)
	byName := make(map[string]*candidate, 16)

	for _, doc := range docs {
		for _, elem := range doc {
			dtype := Classify(elem.Value)
			c, ok := byName[elem.Key]
			if !ok {
				c = &candidate{name: elem.Key, dtype: dtype}
				byName[elem.Key] = c
				order = append(order, c)
			} else {
				c.dtype = Merge(c.dtype, dtype)
			}
		}
	}

	fields := make([]Field, 0, len(order))
	for _, c := range order {
		merged := c.dtype
		resolved := Resolve(merged)
		if !resolved.Equal(merged) {
			e.logger.Debug("degraded field type",
				zap.String("field", c.name),
				zap.Stringer("inferred", merged),
				zap.Stringer("resolved", resolved))
		}
		fields = append(fields, Field{Name: c.name, Type: resolved, Inferred: &merged})
	}

	s, err := NewSchema(fields...)
	if err != nil {
		return Schema{}, err
	}

	e.logger.Debug("inferred schema",
		zap.Int("documents", len(docs)),
		zap.Int("fields", s.Len()))

	return s, nil
}

// InferRaw is Infer without resolution: compound and null types are kept as
// merged. Useful for diagnostics; the result may not be materializable.
func (e *Inferrer) InferRaw(docs []primitive.D) (Schema, error) {
	s, err := e.Infer(docs)
	if err != nil {
		return Schema{}, err
	}
	fields := s.Fields()
	for i := range fields {
		if fields[i].Inferred != nil {
			fields[i].Type = *fields[i].Inferred
		}
	}
	return NewSchema(fields...)
}
