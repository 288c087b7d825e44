// Package extractors dispatches media kinds to their metadata extractors.
//
// Each sub-package turns one file path into a kind-specific fragment:
//
//   - videoaudio: container probe via ffprobe
//   - image: header decode plus EXIF
//   - audio: tag reader with probe fallback
//   - archive: entry listing with limits and traversal detection
//   - textsource: sidecar discovery and decoding
//
// Extractors never return errors; failures are recorded on the fragment.
package extractors
