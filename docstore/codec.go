package docstore

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ToDocument converts a bson-tagged struct into a Document.
func ToDocument(v interface{}) (Document, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Decode fills out, a pointer to a bson-tagged struct, from doc.
func Decode(doc Document, out interface{}) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

// HexID returns the document's _id as a hex string, or "" when it has none.
func HexID(doc Document) string {
	if oid, ok := doc[FieldID].(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return ""
}
