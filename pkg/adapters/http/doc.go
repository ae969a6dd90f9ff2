/*
Package http exposes the recipient backend and the edit screen over HTTP.

The record API (/api/recipients/{id}) serves wire records from the transport.
The screen API (/screens) opens one session per client, runs the workflow
operations on it, and streams the resulting state diffs as server-sent events
(/screens/{sid}/events). Requests are validated against the embedded OpenAPI
document, served at /openapi.yaml.
*/
package http
