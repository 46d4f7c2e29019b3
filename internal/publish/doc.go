// Package publish uploads delivered files to S3.
//
// Uploads happen after local delivery. A failed upload never removes or
// rewrites the local deliverable.
package publish
