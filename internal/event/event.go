// Package event defines the product lifecycle event contract: the exchange,
// the routing keys, and the stable JSON payload forms.
package event

import (
	"encoding/json"

	"github.com/fairyhunter13/product-catalog-service/internal/model"
)

// Exchange is the topic exchange every lifecycle event goes to.
const Exchange = "product_events"

// Routing keys, one per lifecycle transition.
const (
	RoutingCreated = "product.created"
	RoutingUpdated = "product.updated"
	RoutingDeleted = "product.deleted"
)

// deletedPayload is the body of a product.deleted event. The capitalized Id
// key is part of the published contract.
type deletedPayload struct {
	ID int64 `json:"Id"`
}

// Encoder serializes event payloads. Consumers across the fabric parse the
// payload as a JSON string body, so the encoder output is published verbatim.
type Encoder struct{}

// Product encodes the full post-mutation record for created/updated events.
func (Encoder) Product(p model.Product) ([]byte, error) {
	return json.Marshal(p)
}

// Deleted encodes the `{"Id": <id>}` body of a deleted event.
func (Encoder) Deleted(id int64) ([]byte, error) {
	return json.Marshal(deletedPayload{ID: id})
}
