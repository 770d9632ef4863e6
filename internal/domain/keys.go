package domain

// KeyPrefix namespaces every key the pipeline writes to the KV store.
const KeyPrefix = "grounder:"
