package upstream

// Request is the closed set of fulfillment payloads, one variant per
// product type. Each variant carries only the fields its type needs; the
// HTTP client dispatches over the concrete types exhaustively.
type Request interface {
	fulfillmentRequest()
}

// InstantCodeRequest asks the provider for a code synchronously.
type InstantCodeRequest struct {
	UpstreamProductID string
	Reference         string
	Quantity          int
}

// PreorderCodeRequest registers a code order the provider confirms later
// via callback.
type PreorderCodeRequest struct {
	UpstreamProductID string
	Reference         string
	Quantity          int
}

// GameTopupRequest tops up a player account, keyed by the player UID.
type GameTopupRequest struct {
	UpstreamProductID string
	Reference         string
	Quantity          int
	PlayerUID         string
}

// MobileTopupRequest tops up a phone number.
type MobileTopupRequest struct {
	UpstreamProductID string
	Reference         string
	Quantity          int
	PhoneNumber       string
}

// CashcardRequest orders a cash card, confirmed later via callback.
type CashcardRequest struct {
	UpstreamProductID string
	Reference         string
	Quantity          int
}

// GenericRequest covers product types the provider accepts on its generic
// asynchronous endpoint.
type GenericRequest struct {
	UpstreamProductID string
	Reference         string
	Quantity          int
}

func (InstantCodeRequest) fulfillmentRequest()  {}
func (PreorderCodeRequest) fulfillmentRequest() {}
func (GameTopupRequest) fulfillmentRequest()    {}
func (MobileTopupRequest) fulfillmentRequest()  {}
func (CashcardRequest) fulfillmentRequest()     {}
func (GenericRequest) fulfillmentRequest()      {}

// Result of a dispatch. Reference echoes the correlation id; Code is only
// set for synchronous instant-code fulfillment.
type Result struct {
	Reference string
	Code      string
}
