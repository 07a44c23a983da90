package docs

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Formas raw de los documentos de cada colección. Cada forma tiene su propio
// adapter en mapping.go; nada fuera de este paquete ve estos tipos.

// Nombres de las colecciones de origen.
const (
	CollectionListings       = "listings"
	CollectionFeedbackEvents = "feedback_events"
	CollectionTempListings   = "listings_temp"
	CollectionSoldPrices     = "soldPrices"
)

// Collections es el orden en el que se cargan las colecciones.
var Collections = []string{
	CollectionListings,
	CollectionFeedbackEvents,
	CollectionTempListings,
	CollectionSoldPrices,
}

// listingDoc es un documento de "listings": lleva la predicción.
// Ningún campo hace fallar el decode: un tipo inesperado queda como ausente.
type listingDoc struct {
	ID                 flexString                     `json:"id"`
	PricingStrategy    flexObject[pricingStrategy]    `json:"pricingStrategy"`
	ItemIdentification flexObject[itemIdentification] `json:"itemIdentification"`

	// Campos planos legacy
	Category  flexString `json:"category"`
	Condition flexString `json:"condition"`
	ItemName  flexString `json:"itemName"`
}

type pricingStrategy struct {
	ListingPrice flexNumber `json:"listingPrice"`
	Optimal      flexNumber `json:"optimal"`
}

type itemIdentification struct {
	Category          flexString `json:"category"`
	ObservedCondition flexString `json:"observedCondition"`
	Name              flexString `json:"name"`
}

// feedbackDoc es un feedback event; Value puede ser un objeto o un escalar.
type feedbackDoc struct {
	ListingID flexString               `json:"listingId"`
	Purpose   flexString               `json:"purpose"`
	Stage     flexString               `json:"stage"`
	Value     json.RawMessage          `json:"value"`
	Metadata  flexObject[pricePayload] `json:"metadata"`
}

type pricePayload struct {
	ActualPrice flexNumber `json:"actualPrice"`
	SoldPrice   flexNumber `json:"soldPrice"`
}

// tempListingDoc es un documento de "listings_temp" con el resultado de la venta.
type tempListingDoc struct {
	WasSold     flexBool   `json:"wasSold"`
	ActualPrice flexNumber `json:"actualPrice"`
	SessionID   flexString `json:"sessionId"`
	ItemName    flexString `json:"itemName"`
	DaysToSell  flexNumber `json:"daysToSell"`
	Category    flexString `json:"category"`
	Condition   flexString `json:"condition"`
}

// flexObject decodifica T solo si el valor es un objeto JSON. Cualquier otra
// cosa (string, número, array, null) deja Set en false.
type flexObject[T any] struct {
	Value T
	Set   bool
}

func (o *flexObject[T]) UnmarshalJSON(b []byte) error {
	*o = flexObject[T]{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	*o = flexObject[T]{Value: v, Set: true}
	return nil
}

// flexBool acepta true/false, strings como "true" o "1", y números (distinto de 0 = true).
// Un string que no se reconoce cuenta como false.
type flexBool bool

func (f *flexBool) UnmarshalJSON(b []byte) error {
	*f = false
	b = bytes.TrimSpace(b)

	var v bool
	if err := json.Unmarshal(b, &v); err == nil {
		*f = flexBool(v)
		return nil
	}

	var n flexNumber
	if err := n.UnmarshalJSON(b); err == nil && n.Set {
		*f = n.Value != 0
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if v, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			*f = flexBool(v)
		}
	}
	return nil
}

// flexNumber acepta números JSON o strings numéricos finitos. Cualquier otra cosa
// (null, objeto, texto, NaN, infinito) queda como no informado en lugar de fallar.
type flexNumber struct {
	Value float64
	Set   bool
}

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	*n = flexNumber{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(b, &num); err == nil {
		if v, err := num.Float64(); err == nil {
			n.set(v)
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			n.set(v)
		}
	}
	return nil
}

// set descarta NaN e infinitos: ParseFloat los acepta como texto ("NaN", "Inf").
func (n *flexNumber) set(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	*n = flexNumber{Value: v, Set: true}
}

// truthy replica el "a or b" de los documentos: 0 cuenta como ausente.
func (n flexNumber) truthy() bool {
	return n.Set && n.Value != 0
}

// flexString acepta strings o números (ids numéricos en documentos viejos).
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	*s = ""
	b = bytes.TrimSpace(b)

	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = flexString(strings.TrimSpace(str))
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(b, &num); err == nil {
		*s = flexString(num.String())
	}
	return nil
}
