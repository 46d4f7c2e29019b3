// Package watch turns a hot folder into a job queue.
//
// New *.toml, *.yaml and *.yml manifests dropped into the watched directory
// are decoded into pipeline requests after a settle delay and run one at a
// time by a single consumer. Each processed manifest is renamed with a .done
// or .failed suffix and gets a JSON log of its job beside it.
package watch
