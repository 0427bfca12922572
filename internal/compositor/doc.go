// Package compositor burns translated subtitle documents into the source
// video with ffmpeg and moves the result to the output library. On success
// the item's staging directory is removed.
package compositor
