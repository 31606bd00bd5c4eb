package auction

// Result is the typed outcome of an auction engine operation.
type Result int

const (
	// Success means the operation applied and all state changes committed.
	Success Result = 0

	// ResUnauthorized: the caller lacks the required role or relationship
	// (not an admin, not the seller).
	ResUnauthorized Result = 100 + iota

	// ResAssetNotAllowed: the asset class is not on the allow-list.
	ResAssetNotAllowed

	// ResAlreadyListed: an Active listing already exists for the key.
	ResAlreadyListed

	// ResNotListed: no Active listing exists for the key.
	ResNotListed

	// ResAuctionEnded: the temporal precondition failed, the auction is
	// already past its deadline.
	ResAuctionEnded

	// ResAuctionNotEnded: the operation requires the deadline to have
	// passed and it has not.
	ResAuctionNotEnded

	// ResBidTooLow: the offered price is below the required increment.
	ResBidTooLow

	// ResSelfOutbid: the caller already holds the lead bid.
	ResSelfOutbid

	// ResAlreadyBidOn: cancel was attempted after a bid exists.
	ResAlreadyBidOn

	// ResTransferFailed: an external ledger call did not complete. The
	// operation aborted; nothing moved.
	ResTransferFailed

	// ResReentrancy: a guarded entry point was re-entered while another
	// guarded call was still executing.
	ResReentrancy

	// ResInvalidParams: a malformed argument (empty asset class, zero
	// price, deadline not in the future, out-of-range rate).
	ResInvalidParams

	// ResInternal: a storage or encoding failure. State is unchanged.
	ResInternal
)

var resultNames = map[Result]string{
	Success:            "success",
	ResUnauthorized:    "unauthorized",
	ResAssetNotAllowed: "assetNotAllowed",
	ResAlreadyListed:   "alreadyListed",
	ResNotListed:       "notListed",
	ResAuctionEnded:    "auctionEnded",
	ResAuctionNotEnded: "auctionNotEnded",
	ResBidTooLow:       "bidTooLow",
	ResSelfOutbid:      "selfOutbid",
	ResAlreadyBidOn:    "alreadyBidOn",
	ResTransferFailed:  "transferFailed",
	ResReentrancy:      "reentrancy",
	ResInvalidParams:   "invalidParams",
	ResInternal:        "internal",
}

var resultMessages = map[Result]string{
	Success:            "The operation was applied.",
	ResUnauthorized:    "The caller lacks the required role or relationship.",
	ResAssetNotAllowed: "The asset class is not on the allow-list.",
	ResAlreadyListed:   "An active listing already exists for this asset.",
	ResNotListed:       "No active listing exists for this asset.",
	ResAuctionEnded:    "The auction has already ended.",
	ResAuctionNotEnded: "The auction has not ended yet.",
	ResBidTooLow:       "The bid is below the required increment.",
	ResSelfOutbid:      "The caller already holds the lead bid.",
	ResAlreadyBidOn:    "The listing has been bid on and can no longer be cancelled.",
	ResTransferFailed:  "An external ledger transfer did not complete.",
	ResReentrancy:      "The engine is already executing a guarded operation.",
	ResInvalidParams:   "An operation parameter is malformed or out of range.",
	ResInternal:        "An internal storage or encoding failure occurred.",
}

// String returns the short code name of the result.
func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return "unknown"
}

// Message returns a human-readable description of the result.
func (r Result) Message() string {
	if msg, ok := resultMessages[r]; ok {
		return msg
	}
	return "Unknown result code."
}

// IsSuccess reports whether the operation applied.
func (r Result) IsSuccess() bool {
	return r == Success
}

// ApplyResult is returned by every mutating engine entry point.
type ApplyResult struct {
	// Result is the operation result code.
	Result Result

	// Applied indicates whether state changes committed.
	Applied bool

	// Message is a human-readable result message. For failures it may
	// carry detail beyond Result.Message().
	Message string

	// Listing is the post-operation listing record, set on success for
	// listing-scoped operations.
	Listing *Listing
}

func applied(l *Listing) ApplyResult {
	return ApplyResult{Result: Success, Applied: true, Message: Success.Message(), Listing: l}
}

func failed(r Result) ApplyResult {
	return ApplyResult{Result: r, Message: r.Message()}
}

func failedf(r Result, msg string) ApplyResult {
	return ApplyResult{Result: r, Message: msg}
}
