// Package preflight provides readiness checks for the external binaries,
// credentials and filesystem paths that slidecast depends on.
//
// The CLI "slidecast status" command renders RunAll and CheckSystemDeps.
// Checks gated by a config toggle are skipped when the feature is disabled.
package preflight
