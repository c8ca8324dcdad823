package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kailas-cloud/cookbook/internal/domain"
	domrecipe "github.com/kailas-cloud/cookbook/internal/domain/recipe"
)

// recipeLine is one JSON Lines record. _id may be a plain hex string or an
// extended-JSON {"$oid": "..."} object as produced by document store exports.
type recipeLine struct {
	ID           json.RawMessage    `json:"_id"`
	Title        string             `json:"title"`
	Ingredients  []string           `json:"ingredients"`
	Instructions string             `json:"instructions"`
	Features     domrecipe.Features `json:"features"`
}

func parseLine(data []byte) (domrecipe.Recipe, error) {
	var l recipeLine
	if err := json.Unmarshal(data, &l); err != nil {
		return domrecipe.Recipe{}, fmt.Errorf("%w: %w", domain.ErrInvalidRecipe, err)
	}

	id, err := parseLineID(l.ID)
	if err != nil {
		return domrecipe.Recipe{}, err
	}

	return domrecipe.New(id, l.Title, l.Ingredients, l.Instructions, l.Features) //nolint:wrapcheck // domain error
}

// parseLineID returns the zero ID when _id is absent so that a new one is generated.
func parseLineID(raw json.RawMessage) (domrecipe.ID, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return domrecipe.NilID, nil
	}

	var hex string
	if strings.HasPrefix(s, "{") {
		var oid struct {
			OID string `json:"$oid"`
		}
		if err := json.Unmarshal(raw, &oid); err != nil {
			return domrecipe.NilID, fmt.Errorf("%w: _id: %w", domain.ErrInvalidRecipe, err)
		}
		hex = oid.OID
	} else if err := json.Unmarshal(raw, &hex); err != nil {
		return domrecipe.NilID, fmt.Errorf("%w: _id: %w", domain.ErrInvalidRecipe, err)
	}

	return domrecipe.ParseID(hex) //nolint:wrapcheck // typed domain error
}
