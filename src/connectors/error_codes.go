package connectors

import "fmt"

// MexcErrorCodes maps MEXC contract API error codes to human-readable
// messages. Any non-zero code on an HTTP 200 body means the venue evaluated
// and refused the request; those are terminal, never retried.
var MexcErrorCodes = map[int]string{
	0:    "SUCCESS",
	401:  "UNAUTHORIZED",           // API key missing or invalid
	403:  "ACCESS_DENIED",          // Not allowed for this key
	404:  "API_NOT_FOUND",          // Endpoint does not exist
	510:  "RATE_LIMIT_EXCEEDED",    // Too many requests
	600:  "PARAMETER_ERROR",        // Missing or malformed parameter
	602:  "SIGNATURE_INVALID",      // Signature verification failed
	603:  "REPEATED_REQUEST",       // Duplicate externalOid / replayed request
	701:  "RECV_WINDOW_EXPIRED",    // Timestamp outside recvWindow
	1001: "CONTRACT_NOT_EXISTS",    // Unknown symbol
	1002: "CONTRACT_NOT_ACTIVATED", // Contract not tradable yet
	1003: "RISK_LIMIT_ERROR",       // Order breaks the risk limit tier
	1004: "AMOUNT_ERROR",           // Volume outside allowed range
	2001: "ORDER_TYPE_ERROR",       // Unsupported order type code
	2002: "ORDER_SIDE_ERROR",       // Unsupported side code
	2003: "POSITION_NOT_ENOUGH",    // Reduce-only volume exceeds position
	2005: "ORDER_AMOUNT_ERROR",     // Quantity precision / step invalid
	2007: "ORDER_PRICE_ERROR",      // Price precision / band invalid
	2008: "INSUFFICIENT_BALANCE",   // Not enough available margin
	2009: "POSITION_NOT_EXISTS",    // No position to operate on
	2011: "ORDER_QTY_TOO_SMALL",    // Below minimum order volume
	2015: "ORDER_PRICE_OVER_LIMIT", // Price outside protection band
	2022: "POSITION_MODE_ERROR",    // Hedge/one-way mode mismatch
	2024: "LEVERAGE_ERROR",         // Leverage outside contract bounds
	2025: "POSITION_OVER_MAX_VOL",  // Position would exceed max volume
	2027: "OPEN_TYPE_ERROR",        // Isolated/cross mismatch with position
	2034: "PRECISION_ERROR",        // Generic precision failure
	9999: "SYSTEM_ERROR",           // Venue-side internal error
}

// GetErrorMsg returns a human-readable message for a given MEXC error code.
// If the code is unknown, returns a generic message including the code.
func GetErrorMsg(code int) string {
	if msg, ok := MexcErrorCodes[code]; ok {
		return msg
	}
	return fmt.Sprintf("UNKNOWN_MEXC_ERROR_%d", code)
}
