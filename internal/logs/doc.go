// Package logs reads the contentstated log file for the CLI.
//
// Tail returns the last lines of the file together with the byte offset the
// read stopped at; Follow resumes from an offset and delivers appended lines
// until its context ends. A missing file reads as empty so `contentstate logs`
// works before the daemon has ever started.
package logs
