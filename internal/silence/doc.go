// Package silence classifies audio blocks as silent using an exact-zero
// test and an RMS energy threshold. It drives the one-shot leading-silence
// trim at the start of a recording session.
package silence
