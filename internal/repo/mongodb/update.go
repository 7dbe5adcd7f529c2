package mongodb

import (
	"fmt"

	"github.com/nguyentranbao-ct/message-core/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

type updateOp string

const (
	opSet      updateOp = "$set"
	opAddToSet updateOp = "$addToSet"
	opPull     updateOp = "$pull"
	opPush     updateOp = "$push"
)

// Update is one typed mutation intent of UpdateProperty. Intents are folded
// into a single update document, so a whole call is one atomic write.
type Update struct {
	op    updateOp
	field string
	value any
}

// Set assigns value to field.
func Set(field string, value any) Update {
	return Update{op: opSet, field: field, value: value}
}

// AddToSet adds value to the array field unless it is already present.
func AddToSet(field string, value any) Update {
	return Update{op: opAddToSet, field: field, value: value}
}

// Pull removes every element of the array field equal to (or matching) value.
func Pull(field string, value any) Update {
	return Update{op: opPull, field: field, value: value}
}

// Push appends value to the array field.
func Push(field string, value any) Update {
	return Update{op: opPush, field: field, value: value}
}

// fields fixed at creation.
var immutableFields = map[string]struct{}{
	"_id":             {},
	"conversation_id": {},
	"sender_id":       {},
	"text":            {},
	"created":         {},
}

func buildUpdate(updates ...Update) (bson.M, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: empty update", models.ErrInvalidArgument)
	}

	doc := bson.M{}
	seen := make(map[string]updateOp, len(updates))
	for _, u := range updates {
		if u.field == "" {
			return nil, fmt.Errorf("%w: empty field in %s", models.ErrInvalidArgument, u.op)
		}
		if _, ok := immutableFields[u.field]; ok {
			return nil, fmt.Errorf("%w: field %q is immutable", models.ErrInvalidArgument, u.field)
		}
		if prev, ok := seen[u.field]; ok {
			return nil, fmt.Errorf("%w: field %q targeted by %s and %s", models.ErrInvalidArgument, u.field, prev, u.op)
		}
		seen[u.field] = u.op

		fields, ok := doc[string(u.op)].(bson.M)
		if !ok {
			fields = bson.M{}
			doc[string(u.op)] = fields
		}
		fields[u.field] = u.value
	}
	return doc, nil
}
