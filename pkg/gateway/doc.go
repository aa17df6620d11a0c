// Package gateway provides the HTTP ingestion surface. Clients POST
// text to /v1/messages; the gateway scans it through the current
// guardrail engine and returns the sanitized text, or a 422 response
// naming the triggered rules when a blocking filter matched.
package gateway
