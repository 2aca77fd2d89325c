// Package server holds the HTTP server configuration.
//
// The Config struct defines the HTTP port, the API key and where asset files live:
// AssetsRoot is the site root on disk, and AssetsPath is the prefix under it whose
// files are mirrored into the bucket (assets/Uploads/a.png is stored as Uploads/a.png).
package server
