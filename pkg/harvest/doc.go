// Package harvest collects items from virtualized lists, the kind of list
// that only keeps the rows near the viewport in the DOM.
//
// A Harvester scrolls a Container, waits for the host to render, samples the
// rendered rows with an Extractor and deduplicates them by key in the order
// they were first seen. A scan ends when an explicit offset bound is reached,
// when a number of consecutive samples add nothing new, or when the attempt
// cap runs out. Cancel ends the active scan early and keeps what was found.
//
// Two variants sit on top of Scan. TwoPass races to the end of the list and
// then walks back slowly, which catches rows that were rendered only briefly.
// ScanSection and ScanSections bound the scan to the offsets between section
// headers found by DiscoverSections.
package harvest
