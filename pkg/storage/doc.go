// Package storage owns the on-disk output tree:
//
//	{root}/photos
//	{root}/videos
//	{root}/albums/{post id}
//	{root}/metadata
//
// Directories are created idempotently and every file is written to a
// temporary name first, then renamed into place, so a crash never leaves a
// half-written media file under its final name.
package storage
