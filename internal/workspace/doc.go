// Package workspace owns the per-run scratch directory.
//
// A Workspace is held under an exclusive file lock that lives beside the
// directory, so two slidecast processes never share scratch files. The
// directory is emptied at run start and reset after every run.
package workspace
