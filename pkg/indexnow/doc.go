// Package indexnow validates IndexNow inputs and builds the protocol's wire
// requests.
//
// Raw strings are parsed once into EndpointURL, Key, KeyfileURL and
// ContentURL values; code holding one of these can assume it is well formed.
// BuildSingleRequest and BuildBatchRequest turn validated values into a GET
// or POST *http.Request ready to be sent by any HTTP client. Nothing in this
// package performs network I/O.
package indexnow
