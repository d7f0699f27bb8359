// Package splitter implements SequenceSplitter: partitioning a concatenated
// observation buffer into independent subsequences by a lengths vector, or
// treating the whole buffer as one subsequence when lengths is absent.
package splitter
