// Package webhook implements the GitHub webhook ingestion pipeline and the
// read API over the webhook log.
//
// # Ingestion Flow
//
//  1. HTTP POST arrives at /webhook/github
//  2. Shared secret presence checked (500 if unconfigured)
//  3. Body size checked (reject with 413 if too large)
//  4. X-Hub-Signature-256 extracted; HMAC-SHA256 computed over the raw body
//  5. Constant-time comparison of signatures (reject with 401 on mismatch)
//  6. Payload normalized into a log record (500 on unparseable body)
//  7. Record appended to the SQLite log (500 on storage failure)
//  8. For push events, each commit is synced to the task tracker in payload
//     order; sync failures are logged and do not affect the response
//  9. 200 returned once persistence succeeded
//
// The log write is the durable source of truth. Task-tracker sync is
// best-effort and never rolls back an already-committed record.
//
// # Security Model
//
// - HMAC-SHA256 signatures verified using crypto/subtle (constant-time comparison)
// - The "sha256=" algorithm tag is mandatory; other forms are rejected outright
// - Body size limits enforced to prevent DoS attacks
// - No signature details leaked in error responses (always generic 401)
// - Secrets loaded from environment variables (never hardcoded)
package webhook
