// Package html provides a Normaliser for markup sidecars: HTML notes and
// XML metadata such as .nfo files. It strips tags, scripts and styles and
// decodes entities, keeping one line per element.
package html
