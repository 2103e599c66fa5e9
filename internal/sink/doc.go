// Package sink consumes a finished WAV container and saves it. The file
// sink is the recorder's download collaborator: it takes the byte buffer
// exactly once and writes it atomically to disk.
package sink
