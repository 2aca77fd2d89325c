// Package files exposes the bucket operations over HTTP.
//
// Files are identified by their name relative to the site root (for example
// "assets/Uploads/report.pdf"). Uploads are first written below the local assets
// root, then put in the bucket under the key derived from the name.
//
// # Routes
//
//   - POST   /files           multipart upload (name, file)
//   - GET    /files/content   stream the stored object
//   - GET    /files/exists    {"exists": bool}
//   - GET    /files/size      {"size": n}, -1 when missing
//   - GET    /files/link      {"url": "..."} with an optional expires
//   - DELETE /files           remove the object
//   - POST   /files/rename    {"from": "...", "to": "..."}
package files
