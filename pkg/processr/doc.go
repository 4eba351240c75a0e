// Package processr implements the client for the Embdr media-processing API.
//
// Callers submit a local file, a link, or an arbitrary byte stream for
// asynchronous thumbnail and image-preview generation, then observe completion
// either through the milestone callbacks of Process or the blocking Wait
// helper. The client owns the submission encoding (multipart for binary
// payloads, form encoding for links), the link-unreachable proxy retry, and
// the adaptive polling loop that grows its delay until the server reports a
// terminal status.
//
// Every callback slot fires at most once per Process call regardless of how
// many polls or retries occur; treat the thumbnail and image milestones as
// best-effort progress signals rather than guarantees of eventual completion.
package processr
