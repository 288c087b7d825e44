// Package connectors provides change sources that feed the indexer.
// The filesystem connector watches a media tree and reports debounced
// batches of created, modified and removed media files.
package connectors
