// Package audit records every quote created or deleted through the BFF.
//
// Records are enqueued by the proxy handlers and written in the background
// by recorder.Recorder, so a slow or failing store never delays or fails a
// proxied request. Subpackages:
//
//   - storage: memory, sqlite (modernc.org/sqlite) and sqlite3 (mattn/go-sqlite3) backends
//   - recorder: the buffered asynchronous writer
//   - retention: cron-scheduled pruning of old records
package audit
