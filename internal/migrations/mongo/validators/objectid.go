package validators

import "go.mongodb.org/mongo-driver/bson"

// hexID matches foreign keys stored as 24-character ObjectID hex strings.
var hexID = bson.M{
	"bsonType":  "string",
	"minLength": 24,
	"maxLength": 24,
}

var integer = []string{"int", "long"}

var number = []string{"double", "int", "long", "decimal"}
