package source

import (
	"go.mongodb.org/mongo-driver/bson"
)

// IDField is the primary key field every MongoDB document carries.
const IDField = "_id"

// Projection restricts documents to the named fields. An empty projection
// keeps every field.
type Projection []string

// ToBSON renders the projection for a find command. The primary key is
// excluded unless it is named. Nil when the projection is empty.
func (p Projection) ToBSON() bson.D {
	if len(p) == 0 {
		return nil
	}
	out := make(bson.D, 0, len(p)+1)
	withID := false
	for _, name := range p {
		if name == IDField {
			withID = true
		}
		out = append(out, bson.E{Key: name, Value: 1})
	}
	if !withID {
		out = append(out, bson.E{Key: IDField, Value: 0})
	}
	return out
}

// Apply filters doc the way the server applies ToBSON. Field order follows
// the document.
func (p Projection) Apply(doc Document) Document {
	if len(p) == 0 {
		return doc
	}
	out := make(Document, 0, len(p))
	for _, elem := range doc {
		if p.has(elem.Key) {
			out = append(out, elem)
		}
	}
	return out
}

func (p Projection) has(name string) bool {
	for _, n := range p {
		if n == name {
			return true
		}
	}
	return false
}
