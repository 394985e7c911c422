// Package camsync scrapes public webcam directories into the catalog JSON.
//
// Two sources are supported: the Panomax instance API (JSON) and the Bergfex
// webcam directory (HTML). Fetches retry on transient failures with a fixed
// backoff schedule, a 404 aborts immediately, and all requests share one
// rate limiter so the sources are not hammered. The merge step dedupes by
// stream URL, disambiguates duplicate names with numeric suffixes, and sorts
// by name before writing the catalog file.
package camsync
