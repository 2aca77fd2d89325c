// Package integrity provides health checks for the bucket and the local asset mirror.
//
// # Checks Provided
//
//   - Container: the configured container exists and the credentials can reach it.
//   - Mirror: every file below the local assets folder is present in the bucket.
//     Missing files can be uploaded with fix.
//   - Probe: a scratch file is put, sized, read, renamed and deleted, then cleaned up.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs container and mirror checks (?probe=true adds the probe).
//   - GET /integrity/container : Runs the container check.
//   - GET /integrity/mirror : Runs the mirror check (supports ?fix=true).
//   - GET /integrity/probe : Runs the probe.
package integrity
