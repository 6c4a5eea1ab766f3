// Package audio plays short cues when the overlay is switched on or off.
// It uses the beep library to play WAV, OGG and MP3 files, or a
// synthesized two-tone cue when no file is configured.
package audio
