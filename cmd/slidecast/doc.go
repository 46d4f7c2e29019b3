// Command slidecast turns a PDF deck and a narration script into a narrated
// video, or a script alone into a narration track.
//
// The generate and audio commands run one pipeline request in the
// foreground. The watch command feeds job manifests from a hot folder to the
// same pipeline one at a time. The history, status, voices, and config
// commands inspect local state without touching the workspace.
package main
