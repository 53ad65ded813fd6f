package schema

import (
	"time"

	"github.com/hamba/avro/v2"
)

const CartItemEventSchemaTextV1 = `{
	"type": "record",
	"namespace": "storefront.cart",
	"name": "cart_item_event",
	"fields": [
		{"name": "event_id", "type": "string"},
		{"name": "type", "type": {
			"type": "enum",
			"name": "cart_item_event_type",
			"symbols": ["updated", "deleted"]
		}},
		{"name": "occurred_at", "type": {"type": "long", "logicalType": "timestamp-millis"}},
		{"name": "item", "type": {
			"type": "record",
			"name": "cart_item",
			"fields": [
				{"name": "id", "type": "long"},
				{"name": "user_uid", "type": "string"},
				{"name": "product_id", "type": "long"},
				{"name": "img_url", "type": "string"},
				{"name": "quantity", "type": "int"},
				{"name": "price", "type": ["null", "double"], "default": null},
				{"name": "added_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
			]
		}}
	]
}`

type (
	CartItemEventV1 struct {
		EventID    string     `avro:"event_id"`
		Type       string     `avro:"type"`
		OccurredAt time.Time  `avro:"occurred_at"`
		Item       CartItemV1 `avro:"item"`
	}

	CartItemV1 struct {
		ID        int64     `avro:"id"`
		UserUID   string    `avro:"user_uid"`
		ProductID int64     `avro:"product_id"`
		ImgURL    string    `avro:"img_url"`
		Quantity  int       `avro:"quantity"`
		Price     *float64  `avro:"price"`
		AddedAt   time.Time `avro:"added_at"`
	}
)

// CartItemEventV1Avro parses [CartItemEventSchemaTextV1].
// It panics if the schema text is invalid.
func CartItemEventV1Avro() avro.Schema {
	return avro.MustParse(CartItemEventSchemaTextV1)
}
