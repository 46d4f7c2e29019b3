// Package textutil sanitizes user-supplied names for filesystem and object
// storage use.
package textutil
