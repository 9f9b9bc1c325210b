package providerstore

import (
	"regexp"
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
)

// SearchFilter builds the providers-collection filter for the directory
// search parameters.
//
//   - location requires a case-insensitive substring match on the
//     provider's location
//   - query requires a case-insensitive substring match on the name OR
//     the service category
//   - both present: the two clauses AND together
//   - neither present: match everything
//
// Parameters are trimmed first, and an empty string is treated as
// absent rather than as "match empty substring". Inputs are
// regex-quoted so user text can never change the shape of the query.
func SearchFilter(query, location string) bson.M {
	filter := bson.M{}

	if loc := strings.TrimSpace(location); loc != "" {
		filter["location_ci"] = substrRegex(loc)
	}
	if q := strings.TrimSpace(query); q != "" {
		filter["$or"] = []bson.M{
			{"name_ci": substrRegex(q)},
			{"service_ci": substrRegex(q)},
		}
	}

	return filter
}

func substrRegex(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(text.Fold(s)), "$options": "i"}
}
