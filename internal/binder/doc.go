// Package binder walks a directory of audio files and binds each one to
// a catalog track, using fuzzy matching for files that carry no reliable
// identifier tag. It reads the filesystem only; it never writes audio
// files.
package binder
