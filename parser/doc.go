// Package parser turns free-form LLM response text into a ranked list of
// executable shell commands. A line classifier labels each line by a fixed
// priority table of predicates, then an extractor merges candidate lines
// (honoring backslash continuations), scores them, and deduplicates by
// normalized text while keeping first-appearance order.
package parser
