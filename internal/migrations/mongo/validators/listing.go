package validators

import "go.mongodb.org/mongo-driver/bson"

var ListingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"host_id",
			"title",
			"location",
			"price",
			"type",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"host_id": hexID,

			"title": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 200,
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 5000,
			},

			"location": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 200,
			},

			"price": bson.M{
				"bsonType": number,
				"minimum":  0,
			},

			"type": bson.M{
				"bsonType": "string",
				"enum":     []string{"apartment", "house", "villa", "hotel"},
			},

			"bedrooms": bson.M{
				"bsonType": integer,
				"minimum":  0,
			},

			"bathrooms": bson.M{
				"bsonType": integer,
				"minimum":  0,
			},

			"max_guests": bson.M{
				"bsonType": integer,
				"minimum":  1,
			},

			"images": bson.M{
				"bsonType": "array",
				"maxItems": 30,
				"items": bson.M{
					"bsonType":  "string",
					"maxLength": 2048,
				},
			},

			"amenities": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "string",
				},
			},

			"coordinates": bson.M{
				"bsonType": "object",
				"required": []string{"lat", "lng"},
				"properties": bson.M{
					"lat": bson.M{"bsonType": number, "minimum": -90, "maximum": 90},
					"lng": bson.M{"bsonType": number, "minimum": -180, "maximum": 180},
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
